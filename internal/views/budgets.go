package views

import (
	"github.com/shopspring/decimal"

	"github.com/cardsense/cardsense/internal/client"
)

type BudgetView struct {
	YearMonth   string
	MonthYear   string
	Amount      decimal.Decimal
	Spent       decimal.Decimal
	Remaining   decimal.Decimal
	PercentUsed float64
	OverBudget  bool
}

// NewBudgetView derives remaining and percentage used from amount and spent.
// A zero budget is reported as 0% used.
func NewBudgetView(b client.Budget) BudgetView {
	return BudgetView{
		YearMonth:   b.YearMonth,
		MonthYear:   FormatMonthYear(b.YearMonth),
		Amount:      b.Amount,
		Spent:       b.Spent,
		Remaining:   b.Amount.Sub(b.Spent),
		PercentUsed: percentOf(b.Spent, b.Amount),
		OverBudget:  b.Spent.GreaterThan(b.Amount),
	}
}

func NewBudgetViews(budgets []client.Budget) []BudgetView {
	views := make([]BudgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, NewBudgetView(b))
	}
	return views
}
