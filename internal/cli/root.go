package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/factory"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "quizctl",
		Short: "Play live quizzes from the terminal",
		Long: `quizctl is a terminal client for live multiplayer quizzes.

Log in or play as a guest, host a quiz or join one with its pin, and answer
questions as the server pushes them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.loadErr != nil {
				return cfg.loadErr
			}

			fc, err := cfg.FactoryConfig(newLogger(cmd.ErrOrStderr(), cfg.Verbose))
			if err != nil {
				return err
			}
			if app, err = factory.New(fc); err != nil {
				return err
			}

			// Restore a previous login, if any
			_, err = app.Start(cmd.Context())
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: QUIZ_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.SocketURL, "socket", cfg.SocketURL, "Websocket URL, derived from --server when empty (env: QUIZ_SOCKET)")
	rootCmd.PersistentFlags().StringVar(&cfg.Storage, "storage", cfg.Storage, "Credential storage: memory, file, redis (env: QUIZ_STORAGE)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "Directory for file storage (env: QUIZ_STATE_DIR)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for redis storage (env: QUIZ_REDIS_URL)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newGuestCmd())
	rootCmd.AddCommand(newQuizzesCmd())
	rootCmd.AddCommand(newHostCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	// cobra skips post-run hooks when a command fails
	if app != nil {
		if cerr := app.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		output(rootCmd).PrintError(err)
		stop()
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// newLogger logs warnings and errors as JSON, everything with --verbose
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
