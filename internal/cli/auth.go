package cli

import (
	"context"
	"fmt"

	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/session"
	"github.com/nextreadapp/nextread-client/internal/store"
	"github.com/nextreadapp/nextread-client/internal/token"
)

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := container()
			defer func() { _ = injector.Shutdown() }()

			manager, err := do.Invoke[*session.Manager](injector)
			if err != nil {
				return err
			}

			firstTime, err := manager.Login(cmd.Context(), services.Credentials{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			st := manager.Snapshot()
			fmt.Printf("signed in as %s\n", st.Session.Name())
			if firstTime {
				fmt.Println("onboarding survey pending; run the TUI to complete it")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := container()
			defer func() { _ = injector.Shutdown() }()

			manager, err := do.Invoke[*session.Manager](injector)
			if err != nil {
				return err
			}

			// Identify the user from the stored token before discarding
			// it, so the cached shelf snapshot goes with the session.
			var userID string
			if tokens, err := do.Invoke[*token.Store](injector); err == nil {
				if raw, ok := tokens.Load(); ok {
					if claims, err := token.Decode(raw); err == nil {
						userID = claims.Subject
					}
				}
			}

			manager.Logout()

			if userID != "" {
				if cache, err := do.Invoke[*store.Cache](injector); err == nil {
					if err := cache.Clear(cmd.Context(), userID); err != nil {
						fmt.Printf("warning: could not clear local cache: %v\n", err)
					}
				}
			}

			fmt.Println("signed out")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector := container()
			defer func() { _ = injector.Shutdown() }()

			manager, err := do.Invoke[*session.Manager](injector)
			if err != nil {
				return err
			}
			manager.Bootstrap(cmd.Context())

			st := manager.Snapshot()
			if !st.LoggedIn() {
				fmt.Println("not signed in")
				return nil
			}
			fmt.Printf("%s <%s>\n", st.Session.Name(), st.Session.Email)
			if st.Session.FirstTime {
				fmt.Println("onboarding survey pending")
			}
			return nil
		},
	}
}

// sessionFor restores the persisted session and fails when nobody is
// signed in. Shared by the read-only subcommands.
func sessionFor(ctx context.Context, injector do.Injector) (*session.Manager, error) {
	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		return nil, err
	}
	manager.Bootstrap(ctx)
	if !manager.Snapshot().LoggedIn() {
		return nil, fmt.Errorf("not signed in; run \"nextread login\" first")
	}
	return manager, nil
}
