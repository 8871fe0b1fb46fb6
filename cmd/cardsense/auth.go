package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardsense/cardsense/internal/client"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.client.TestConnection(cmd.Context()) {
				return fmt.Errorf("API unreachable at %s", a.client.BaseURL())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API reachable at %s\n", a.client.BaseURL())
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account and start a session.

You will be prompted for the password twice.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := cmd.InOrStdin()
			in := bufio.NewReader(src)
			out := cmd.OutOrStdout()

			var err error
			if req.Password, err = promptPassword(src, in, out, "Password: "); err != nil {
				return err
			}
			if req.ConfirmPassword, err = promptPassword(src, in, out, "Confirm password: "); err != nil {
				return err
			}
			if req.Password == "" {
				return fmt.Errorf("password cannot be empty")
			}
			if req.Password != req.ConfirmPassword {
				return fmt.Errorf("passwords do not match")
			}

			res := a.client.RegisterUser(cmd.Context(), req)
			if err := check(res); err != nil {
				return err
			}
			a.email = res.Data.User.Email
			fmt.Fprintf(out, "Registered and logged in as %s\n", displayUser(res.Data.User))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			src := cmd.InOrStdin()
			password, err := promptPassword(src, bufio.NewReader(src), out, "Password: ")
			if err != nil {
				return err
			}

			res := a.client.LoginUser(cmd.Context(), client.LoginRequest{Email: email, Password: password})
			if err := check(res); err != nil {
				return err
			}
			a.email = res.Data.User.Email
			if a.email == "" {
				a.email = email
			}
			fmt.Fprintf(out, "Logged in as %s\n", displayUser(res.Data.User))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.Logout(cmd.Context())
			if err := a.clearSession(); err != nil {
				return err
			}
			if err := check(res); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.CheckAuth(cmd.Context())
			if err := check(res); err != nil {
				return err
			}
			a.email = res.Data.User.Email
			fmt.Fprintln(cmd.OutOrStdout(), displayUser(res.Data.User))
			return nil
		},
	}
}

func displayUser(u client.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", name, u.Email)
}
