package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

func newLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || pass == "" {
				return fmt.Errorf("--email and --pass are required")
			}

			id, err := app.Identity.LoginWithCredentials(cmd.Context(), model.Credentials{Email: email, Password: pass})
			if err != nil {
				return err
			}

			output(cmd).Print(NewIdentityView(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Identity.Logout(cmd.Context()); err != nil {
				return err
			}

			output(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := app.Identity.Current()
			if id == nil {
				return fmt.Errorf("%w: run 'quizctl login' first", model.ErrNoIdentity)
			}

			output(cmd).Print(NewIdentityView(id))
			return nil
		},
	}
}

func newGuestCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Create a guest identity",
		Long: `Create a guest identity and print it.

Guests are not remembered between runs; pass --name to host or join to play
as a guest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.Identity.StartGuestSession(name)
			if err != nil {
				return err
			}

			output(cmd).Print(NewIdentityView(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Nickname (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// useGuest switches to a guest identity when name is set
func useGuest(name string) error {
	if name == "" {
		if app.Identity.Current() == nil {
			return fmt.Errorf("%w: log in or pass --name to play as a guest", model.ErrNoIdentity)
		}
		return nil
	}
	_, err := app.Identity.StartGuestSession(name)
	return err
}
