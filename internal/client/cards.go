package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Card is an entry of the card catalogue
type Card struct {
	ID                    int64            `json:"id" example:"3"`
	Issuer                string           `json:"issuer" example:"Chase"`
	Name                  string           `json:"name" example:"Sapphire Preferred"`
	AnnualFee             decimal.Decimal  `json:"annual_fee" example:"95.00"`
	ForeignTransactionFee bool             `json:"ftf"`
	RewardRules           []map[string]any `json:"reward_rules,omitempty"`
	Benefits              []map[string]any `json:"benefits,omitempty"`
}

// UserCard is a catalogue card held by the current user
type UserCard struct {
	ID          int64  `json:"id" example:"12"`
	Card        int64  `json:"card" example:"3"`
	CardID      int64  `json:"card_id,omitempty" example:"3"`
	CardName    string `json:"card_name,omitempty" example:"Sapphire Preferred"`
	IsActive    bool   `json:"is_active" example:"true"`
	Notes       string `json:"notes,omitempty"`
	CardDetails *Card  `json:"card_details,omitempty"`
}

// CatalogueID returns the id of the catalogue card, whichever field the backend filled in
func (u UserCard) CatalogueID() int64 {
	if u.CardID != 0 {
		return u.CardID
	}
	if u.Card != 0 {
		return u.Card
	}
	if u.CardDetails != nil {
		return u.CardDetails.ID
	}
	return 0
}

type addUserCardRequest struct {
	Card     int64 `json:"card"`
	IsActive bool  `json:"is_active"`
}

// GetAvailableCards lists the card catalogue
func (c *Client) GetAvailableCards(ctx context.Context) Response[[]Card] {
	return call(ctx, c, "/cards/cards/", RequestOptions{}, "fetch cards", decodeList[Card])
}

// GetUserCards lists the cards held by the current user
func (c *Client) GetUserCards(ctx context.Context) Response[[]UserCard] {
	return call(ctx, c, "/cards/user-cards/", RequestOptions{}, "fetch your cards", decodeList[UserCard])
}

// AddUserCard adds the catalogue card cardID to the user's wallet as an active card.
// Data is nil when the backend confirms without returning the record.
func (c *Client) AddUserCard(ctx context.Context, cardID int64) Response[*UserCard] {
	opts := RequestOptions{
		Method: http.MethodPost,
		Body:   addUserCardRequest{Card: cardID, IsActive: true},
	}
	return call(ctx, c, "/cards/user-cards/", opts, "add card", decodeCreated[UserCard])
}

// DeleteUserCard removes a card from the user's wallet, id is the user card id (not the catalogue id)
func (c *Client) DeleteUserCard(ctx context.Context, id int64) Response[any] {
	endpoint := fmt.Sprintf("/cards/user-cards/%d/", id)
	return call(ctx, c, endpoint, RequestOptions{Method: http.MethodDelete}, "remove card", decodeDeleted("Card removed successfully"))
}
