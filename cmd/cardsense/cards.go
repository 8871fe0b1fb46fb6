package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cardsense/cardsense/internal/views"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List spending categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "CODE\tLABEL")
			for _, c := range views.Categories() {
				fmt.Fprintf(tw, "%s\t%s\n", c.Code, c.Label)
			}
			return tw.Flush()
		},
	}
}

func newCardsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Browse the card catalogue and manage your cards",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the card catalogue",
			RunE: func(cmd *cobra.Command, args []string) error {
				res := a.client.GetAvailableCards(cmd.Context())
				if err := check(res); err != nil {
					return err
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tISSUER\tNAME\tANNUAL FEE\tFOREIGN TX FEE")
				for _, c := range res.Data {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Issuer, c.Name, views.FormatCurrency(c.AnnualFee), yesNo(c.ForeignTransactionFee))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "mine",
			Short: "List your cards",
			RunE: func(cmd *cobra.Command, args []string) error {
				res := a.client.GetUserCards(cmd.Context())
				if err := check(res); err != nil {
					return err
				}
				if len(res.Data) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No cards yet. Add one with 'cardsense cards add <id>'.")
					return nil
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tCARD\tNAME\tACTIVE")
				for _, c := range res.Data {
					name := c.CardName
					if name == "" && c.CardDetails != nil {
						name = c.CardDetails.Name
					}
					fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", c.ID, c.CatalogueID(), name, yesNo(c.IsActive))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "add <card-id>",
			Short: "Add a catalogue card to your wallet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				res := a.client.AddUserCard(cmd.Context(), id)
				if err := check(res); err != nil {
					return err
				}
				if res.Data == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Card added")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Card added (wallet id %d)\n", res.Data.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <wallet-id>",
			Short: "Remove a card from your wallet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				res := a.client.DeleteUserCard(cmd.Context(), id)
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

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
