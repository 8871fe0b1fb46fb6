package views

import (
	"time"

	"github.com/cardsense/cardsense/internal/client"
)

type DashboardView struct {
	TotalSpent         string
	TotalRewards       string
	ActiveBudgets      int
	BudgetAlerts       int
	Budgets            []BudgetView
	RecentTransactions []TransactionView
}

func NewDashboardView(s client.DashboardSummary, loc *time.Location) DashboardView {
	recent := make([]TransactionView, 0, len(s.RecentTransactions))
	for _, tx := range s.RecentTransactions {
		recent = append(recent, NewTransactionView(tx, loc))
	}
	return DashboardView{
		TotalSpent:         FormatCurrency(s.Summary.TotalSpentThisMonth),
		TotalRewards:       FormatCurrency(s.Summary.TotalRewardsThisMonth),
		ActiveBudgets:      s.Summary.ActiveBudgets,
		BudgetAlerts:       s.Summary.BudgetAlerts,
		Budgets:            NewBudgetViews(s.BudgetStatus),
		RecentTransactions: recent,
	}
}
