package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardsense/cardsense/internal/views"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show this month's spending, rewards and budgets",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.GetDashboardSummary(cmd.Context())
			if err := check(res); err != nil {
				return err
			}
			d := views.NewDashboardView(res.Data, a.loc)
			out := cmd.OutOrStdout()

			tw := newTable(out)
			fmt.Fprintf(tw, "Spent this month\t%s\n", d.TotalSpent)
			fmt.Fprintf(tw, "Rewards this month\t%s\n", d.TotalRewards)
			fmt.Fprintf(tw, "Active budgets\t%d\n", d.ActiveBudgets)
			fmt.Fprintf(tw, "Budget alerts\t%d\n", d.BudgetAlerts)
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(d.Budgets) > 0 {
				fmt.Fprintln(out, "\nBudgets")
				tw = newTable(out)
				for _, b := range d.Budgets {
					writeBudgetRow(tw, b)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if len(d.RecentTransactions) > 0 {
				fmt.Fprintln(out, "\nRecent transactions")
				tw = newTable(out)
				for _, tx := range d.RecentTransactions {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tx.Date, tx.Merchant, tx.CategoryLabel, tx.Amount)
				}
				return tw.Flush()
			}
			return nil
		},
	}
}
