package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// CardSummary is the short form of a card embedded in other records
type CardSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
}

type Transaction struct {
	ID                      int64           `json:"id" example:"7"`
	Merchant                string          `json:"merchant" example:"Amazon"`
	Amount                  decimal.Decimal `json:"amount" example:"48.59"`
	Category                string          `json:"category" example:"ONLINE_SHOPPING"`
	CardActuallyUsed        *int64          `json:"card_actually_used"`
	CardActuallyUsedDetails *CardSummary    `json:"card_actually_used_details,omitempty"`
	RecommendedCard         *int64          `json:"recommended_card"`
	RecommendedCardDetails  *CardSummary    `json:"recommended_card_details,omitempty"`
	Notes                   *string         `json:"notes"`
	ActualReward            decimal.Decimal `json:"actual_reward"`
	OptimalReward           decimal.Decimal `json:"optimal_reward"`
	MissedReward            decimal.Decimal `json:"missed_reward"`
	UsedOptimalCard         bool            `json:"used_optimal_card"`
	CreatedAt               string          `json:"created_at" example:"2025-12-18T15:04:05Z"`
	UpdatedAt               string          `json:"updated_at,omitempty"`
}

type CreateTransactionRequest struct {
	Merchant         string          `json:"merchant" example:"Amazon"`
	Amount           decimal.Decimal `json:"amount" example:"48.59"`
	Category         string          `json:"category" example:"ONLINE_SHOPPING"`
	CardActuallyUsed *int64          `json:"card_actually_used"`
	Notes            *string         `json:"notes"`
}

type RecommendationRequest struct {
	Category string          `json:"category" example:"DINING"`
	Amount   decimal.Decimal `json:"amount" example:"60"`
}

// RankedCard is a candidate card in a recommendation
type RankedCard struct {
	CardID     int64           `json:"card_id"`
	CardName   string          `json:"card_name"`
	Issuer     string          `json:"issuer,omitempty"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Reward     decimal.Decimal `json:"reward"`
}

type Recommendation struct {
	BestCard   *RankedCard     `json:"best_card"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Rationale  string          `json:"rationale"`
	Top3       []RankedCard    `json:"top3"`
}

type CardRecommendation struct {
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	Recommendation Recommendation  `json:"recommendation"`
}

// CreateTransaction records a purchase. A nil card means the card used is unknown; empty notes are
// sent as null.
func (c *Client) CreateTransaction(ctx context.Context, req CreateTransactionRequest) Response[Transaction] {
	if req.CardActuallyUsed != nil && *req.CardActuallyUsed == 0 {
		req.CardActuallyUsed = nil
	}
	if req.Notes != nil && strings.TrimSpace(*req.Notes) == "" {
		req.Notes = nil
	}
	opts := RequestOptions{Method: http.MethodPost, Body: req}
	return call(ctx, c, "/transactions/transactions/", opts, "create transaction", decodeObject[Transaction](bareReject))
}

// GetTransactions lists the user's transactions
func (c *Client) GetTransactions(ctx context.Context) Response[[]Transaction] {
	return call(ctx, c, "/transactions/transactions/", RequestOptions{}, "fetch transactions", decodeList[Transaction])
}

// GetTransaction fetches one transaction. The backend may answer with the bare record.
func (c *Client) GetTransaction(ctx context.Context, id int64) Response[Transaction] {
	endpoint := fmt.Sprintf("/transactions/transactions/%d/", id)
	return call(ctx, c, endpoint, RequestOptions{}, "fetch transaction", decodeObject[Transaction](bareRequireID))
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) Response[any] {
	endpoint := fmt.Sprintf("/transactions/transactions/%d/", id)
	return call(ctx, c, endpoint, RequestOptions{Method: http.MethodDelete}, "delete transaction", decodeDeleted("Transaction deleted successfully"))
}

// GetCardRecommendation asks which of the user's cards earns the most for a purchase
func (c *Client) GetCardRecommendation(ctx context.Context, req RecommendationRequest) Response[CardRecommendation] {
	opts := RequestOptions{Method: http.MethodPost, Body: req}
	return call(ctx, c, "/transactions/recommend-card/", opts, "get recommendation", decodeObject[CardRecommendation](bareReject))
}
