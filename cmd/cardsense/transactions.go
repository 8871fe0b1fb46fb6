package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardsense/cardsense/internal/client"
	"github.com/cardsense/cardsense/internal/views"
)

func newTransactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and review purchases",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List transactions grouped by day",
			RunE: func(cmd *cobra.Command, args []string) error {
				res := a.client.GetTransactions(cmd.Context())
				if err := check(res); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(res.Data) == 0 {
					fmt.Fprintln(out, "No transactions yet.")
					return nil
				}
				for i, group := range views.GroupTransactionsByDay(res.Data, a.loc) {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintln(out, group.Date)
					tw := newTable(out)
					for _, tx := range group.Transactions {
						fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s earned\n", tx.ID, tx.Merchant, tx.CategoryLabel, tx.Amount, tx.Earned)
					}
					if err := tw.Flush(); err != nil {
						return err
					}
				}
				return nil
			},
		},
		newTransactionShowCmd(a),
		newTransactionAddCmd(a),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a transaction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				res := a.client.DeleteTransaction(cmd.Context(), id)
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

func newTransactionShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res := a.client.GetTransaction(cmd.Context(), id)
			if err := check(res); err != nil {
				return err
			}

			d := views.NewTransactionDetail(res.Data, a.loc)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Merchant\t%s\n", d.Merchant)
			fmt.Fprintf(tw, "Amount\t%s\n", d.Amount)
			fmt.Fprintf(tw, "Date\t%s\n", d.Date)
			fmt.Fprintf(tw, "Category\t%s\n", d.CategoryLabel)
			fmt.Fprintf(tw, "Card used\t%s\n", d.CardName)
			fmt.Fprintf(tw, "Reward earned\t%s (%s)\n", d.Earned, d.RewardRate)
			fmt.Fprintf(tw, "Best card\t%s\n", d.RecommendedCard)
			if !d.UsedOptimalCard {
				fmt.Fprintf(tw, "Missed reward\t%s\n", d.MissedReward)
			}
			if d.Notes != "" {
				fmt.Fprintf(tw, "Notes\t%s\n", d.Notes)
			}
			return tw.Flush()
		},
	}
}

func newTransactionAddCmd(a *app) *cobra.Command {
	var (
		merchant string
		amount   string
		category string
		cardID   int64
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a purchase",
		Long: `Record a purchase.

--card is the catalogue id of the card used, see 'cardsense cards mine'.
Leave it out when the card is unknown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			category = strings.ToUpper(strings.TrimSpace(category))
			if !views.IsCategory(category) {
				return fmt.Errorf("unknown category %q, see 'cardsense categories'", category)
			}
			if strings.TrimSpace(merchant) == "" {
				return fmt.Errorf("merchant cannot be empty")
			}

			req := client.CreateTransactionRequest{
				Merchant: strings.TrimSpace(merchant),
				Amount:   value,
				Category: category,
				Notes:    &notes,
			}
			if cardID != 0 {
				if err := a.checkActiveCard(cmd, cardID); err != nil {
					return err
				}
				req.CardActuallyUsed = &cardID
			}

			res := a.client.CreateTransaction(cmd.Context(), req)
			if err := check(res); err != nil {
				return err
			}
			tx := views.NewTransactionView(res.Data, a.loc)
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s at %s (%s), id %d\n", tx.Amount, tx.Merchant, tx.CategoryLabel, tx.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant name (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 48.59 (required)")
	cmd.Flags().StringVar(&category, "category", "", "category code (required)")
	cmd.Flags().Int64Var(&cardID, "card", 0, "catalogue id of the card used")
	cmd.Flags().StringVar(&notes, "notes", "", "free text notes")
	_ = cmd.MarkFlagRequired("merchant")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

// checkActiveCard makes sure cardID is one of the user's active cards
func (a *app) checkActiveCard(cmd *cobra.Command, cardID int64) error {
	res := a.client.GetUserCards(cmd.Context())
	if err := check(res); err != nil {
		return err
	}
	options := views.NewCardOptions(res.Data)
	var labels []string
	for _, o := range options {
		if o.Value == cardID {
			return nil
		}
		labels = append(labels, fmt.Sprintf("%d (%s)", o.Value, o.Label))
	}
	if len(labels) == 0 {
		return fmt.Errorf("card %d is not one of your active cards, you have none", cardID)
	}
	return fmt.Errorf("card %d is not one of your active cards: %s", cardID, strings.Join(labels, ", "))
}

func newRecommendCmd(a *app) *cobra.Command {
	var category, amount string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Find the card that earns the most for a purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			category = strings.ToUpper(strings.TrimSpace(category))
			if !views.IsCategory(category) {
				return fmt.Errorf("unknown category %q, see 'cardsense categories'", category)
			}

			res := a.client.GetCardRecommendation(cmd.Context(), client.RecommendationRequest{Category: category, Amount: value})
			if err := check(res); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rec := res.Data.Recommendation
			if rec.BestCard == nil {
				fmt.Fprintln(out, "No recommendation available")
				return nil
			}
			fmt.Fprintf(out, "Best card for %s %s: %s (%sx)\n",
				views.FormatCurrency(value), views.CategoryLabel(category), rec.BestCard.CardName, rec.Multiplier)
			if rec.Rationale != "" {
				fmt.Fprintln(out, rec.Rationale)
			}
			if len(rec.Top3) > 1 {
				tw := newTable(out)
				for i, c := range rec.Top3 {
					fmt.Fprintf(tw, "  %d.\t%s\t%sx\n", i+1, c.CardName, c.Multiplier)
				}
				return tw.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category code (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "purchase amount (required)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
