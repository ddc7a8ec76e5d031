package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// CredentialOptions holds flags for login and signup.
type CredentialOptions struct {
	*RootOptions
	Username string
	Password string
	Role     string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CredentialOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username and password",
		Example: `  clinicdesk login -u admin -p admin
  clinicdesk login -u staff -p staff --format json`,
		Args: cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			id, err := a.desk.Login(ctx, opts.Username, opts.Password)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(id, func(w io.Writer) {
				fmt.Fprintf(w, "Logged in as %s (%s).\n", id.Username, id.Role.Title())
			})
		}),
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "username (required)")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// NewSignupCommand creates the signup command.
func NewSignupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CredentialOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an identity with a chosen role and log in as it",
		Long: `Create an identity with a chosen role and log in as it.

Signup is a local mock: the identity is not stored anywhere but the
current session, and any username is accepted.`,
		Example: `  clinicdesk signup -u nina -p secret --role staff`,
		Args:    cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			id, err := a.desk.Signup(ctx, opts.Username, opts.Password, opts.Role)
			if err != nil {
				return a.fail(err)
			}
			return a.out.Success(id, func(w io.Writer) {
				fmt.Fprintf(w, "Signed up as %s (%s).\n", id.Username, id.Role.Title())
			})
		}),
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "password")
	cmd.Flags().StringVar(&opts.Role, "role", "staff", "role (admin|staff)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(ctx context.Context, a *app, _ []string) error {
			if err := a.desk.Logout(ctx); err != nil {
				return a.fail(err)
			}
			return a.out.Success(map[string]bool{"logged_out": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Logged out.")
			})
		}),
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		Args:  cobra.NoArgs,
		RunE: deskRunE(rootOpts, func(_ context.Context, a *app, _ []string) error {
			id := a.desk.Identity()
			return a.out.Success(id, func(w io.Writer) {
				if id == nil {
					fmt.Fprintln(w, "Not logged in.")
					return
				}
				fmt.Fprintf(w, "%s (%s)\n", id.Username, id.Role.Title())
			})
		}),
	}
}
