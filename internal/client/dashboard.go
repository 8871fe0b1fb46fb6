package client

import (
	"context"

	"github.com/shopspring/decimal"
)

type DashboardTotals struct {
	TotalSpentThisMonth   decimal.Decimal `json:"total_spent_this_month"`
	TotalRewardsThisMonth decimal.Decimal `json:"total_rewards_this_month"`
	ActiveBudgets         int             `json:"active_budgets"`
	BudgetAlerts          int             `json:"budget_alerts"`
}

type DashboardSummary struct {
	Summary            DashboardTotals `json:"summary"`
	BudgetStatus       []Budget        `json:"budget_status"`
	RecentTransactions []Transaction   `json:"recent_transactions"`
}

func (c *Client) GetDashboardSummary(ctx context.Context) Response[DashboardSummary] {
	return call(ctx, c, "/analytics/dashboard/", RequestOptions{}, "fetch dashboard", decodeObject[DashboardSummary](bareReject))
}
