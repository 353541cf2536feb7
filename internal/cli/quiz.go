package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

func newQuizzesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quizzes",
		Short: "List the quizzes you can host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireMember(); err != nil {
				return err
			}

			quizzes, err := app.API.ListQuizzes(cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(quizzes)
			return nil
		},
	}
}

func newHostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "host <quiz-id>",
		Short: "Open a session for one of your quizzes",
		Long: `Create a session for a quiz and wait in its lobby.

Share the printed pin with players, then type 'start' when everyone is in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireMember(); err != nil {
				return err
			}

			pin, err := app.API.CreateSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := output(cmd)
			out.PrintEvent("session", SessionInfo{Pin: pin})

			p := newPlayer(out)
			app.Session.AddListener(p)
			if err := app.Session.HostGame(cmd.Context(), pin); err != nil {
				return err
			}

			return p.loop(cmd.Context(), cmd.InOrStdin())
		},
	}
}

func requireMember() error {
	id := app.Identity.Current()
	if id == nil || id.IsGuest() {
		return fmt.Errorf("%w: run 'quizctl login' first", model.ErrNoIdentity)
	}
	return nil
}
