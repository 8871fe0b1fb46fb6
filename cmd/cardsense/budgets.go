package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardsense/cardsense/internal/client"
	"github.com/cardsense/cardsense/internal/views"
)

const yearMonthLayout = "2006-01"

func newBudgetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage monthly budgets",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List budgets",
			RunE: func(cmd *cobra.Command, args []string) error {
				res := a.client.GetBudgets(cmd.Context())
				if err := check(res); err != nil {
					return err
				}
				if len(res.Data) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No budgets yet.")
					return nil
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "MONTH\tBUDGET\tSPENT\tREMAINING\tUSED")
				for _, b := range views.NewBudgetViews(res.Data) {
					writeBudgetRow(tw, b)
				}
				return tw.Flush()
			},
		},
		newBudgetAddCmd(a),
		&cobra.Command{
			Use:   "delete <YYYY-MM>",
			Short: "Delete the budget for a month",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res := a.client.DeleteBudget(cmd.Context(), args[0])
				if err := check(res); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			},
		},
	)

	return cmd
}

func newBudgetAddCmd(a *app) *cobra.Command {
	var amount, month string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Set the budget for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			if month == "" {
				month = time.Now().In(a.loc).Format(yearMonthLayout)
			}

			res := a.client.CreateBudget(cmd.Context(), client.CreateBudgetRequest{Amount: value, YearMonth: month})
			if err := check(res); err != nil {
				return err
			}
			if res.Data == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Budget for %s set to %s\n", views.FormatMonthYear(month), views.FormatCurrency(value))
				return nil
			}
			b := views.NewBudgetView(*res.Data)
			fmt.Fprintf(cmd.OutOrStdout(), "Budget for %s set to %s\n", b.MonthYear, views.FormatCurrency(b.Amount))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "budget amount (required)")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func writeBudgetRow(w io.Writer, b views.BudgetView) {
	used := views.FormatPercent(b.PercentUsed)
	if b.OverBudget {
		used += " over budget"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		b.MonthYear,
		views.FormatCurrency(b.Amount),
		views.FormatCurrency(b.Spent),
		views.FormatCurrency(b.Remaining),
		used,
	)
}
