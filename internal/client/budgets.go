package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

type Budget struct {
	ID             int64           `json:"id" example:"5"`
	YearMonth      string          `json:"year_month" example:"2025-12"`
	Amount         decimal.Decimal `json:"amount" example:"500.00"`
	Spent          decimal.Decimal `json:"spent" example:"123.45"`
	Remaining      decimal.Decimal `json:"remaining" example:"376.55"`
	PercentageUsed decimal.Decimal `json:"percentage_used" example:"24.69"`
	Thresholds     any             `json:"thresholds,omitempty"`
	FiredFlags     any             `json:"fired_flags,omitempty"`
}

type CreateBudgetRequest struct {
	Amount    decimal.Decimal `json:"amount" example:"500"`
	YearMonth string          `json:"year_month" example:"2025-12"`
}

// GetBudgets lists the user's monthly budgets
func (c *Client) GetBudgets(ctx context.Context) Response[[]Budget] {
	return call(ctx, c, "/budgets/", RequestOptions{}, "fetch budgets", decodeList[Budget])
}

// CreateBudget sets the budget for a month (YYYY-MM).
// Data is nil when the backend confirms without returning the record.
func (c *Client) CreateBudget(ctx context.Context, req CreateBudgetRequest) Response[*Budget] {
	opts := RequestOptions{Method: http.MethodPost, Body: req}
	return call(ctx, c, "/budgets/", opts, "create budget", decodeCreated[Budget])
}

// DeleteBudget removes the budget for yearMonth (YYYY-MM)
func (c *Client) DeleteBudget(ctx context.Context, yearMonth string) Response[any] {
	opts := RequestOptions{
		Method: http.MethodDelete,
		Query:  url.Values{"year_month": {yearMonth}},
	}
	return call(ctx, c, "/budgets/", opts, "delete budget", decodeDeleted("Budget deleted successfully"))
}
