package cli

import (
	"fmt"

	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts *rootOptions) *cobra.Command {
	var req models.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session credential",
		Long: `Log in to the analysis service. The credential is stored in the
credentials file and reused by later commands until you log out or the
service rejects it.

Missing values are prompted for when running in a terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFor(opts)
			if err != nil {
				return err
			}

			if err := promptMissing(&req.Email, "Email", "email", false); err != nil {
				return err
			}
			if err := promptMissing(&req.Password, "Password", "password", true); err != nil {
				return err
			}

			user, err := a.session.Login(cmd.Context(), req)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			if user.Username != "" {
				fmt.Fprintf(out, "✓ Logged in as %s (%s)\n", user.Username, user.Email)
			} else {
				fmt.Fprintf(out, "✓ Logged in as %s\n", user.Email)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Email, "email", "", "Account email")
	flags.StringVar(&req.Password, "password", "", "Account password")

	return cmd
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(opts *rootOptions) *cobra.Command {
	var req models.RegisterRequest
	var confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account on the analysis service. Registration does not log
you in; run 'migration-analyzer login' afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFor(opts)
			if err != nil {
				return err
			}

			if err := promptMissing(&req.Email, "Email", "email", false); err != nil {
				return err
			}
			if err := promptMissing(&req.Username, "Username", "username", false); err != nil {
				return err
			}
			if err := promptMissing(&req.Password, "Password", "password", true); err != nil {
				return err
			}
			if err := promptMissing(&confirm, "Confirm password", "confirm-password", true); err != nil {
				return err
			}

			if _, err := a.session.Register(cmd.Context(), req, confirm); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Registration successful! Please login.")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Email, "email", "", "Account email")
	flags.StringVar(&req.Username, "username", "", "Username")
	flags.StringVar(&req.Password, "password", "", "Password (at least 6 characters)")
	flags.StringVar(&confirm, "confirm-password", "", "Password confirmation")

	return cmd
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFor(opts)
			if err != nil {
				return err
			}

			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFor(opts)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			if err := a.session.Bootstrap(cmd.Context()); err != nil {
				return userError(err)
			}

			user, ok := a.session.User()
			if !ok {
				return errNotLoggedIn
			}
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), user)
			}
			printUser(cmd.OutOrStdout(), user, a.registry.Reports())
			return nil
		},
	}
}
