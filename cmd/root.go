package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gitdelayed/internal/config"
	"gitdelayed/internal/infra"
	"gitdelayed/internal/ports"
)

// cfg is loaded once per invocation before any subcommand runs.
var cfg *config.Config

func newRootCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:           "git-delayed",
		Short:         "Schedule git commits and pushes for future execution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			cfg = c
			setupLogging(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	command.AddCommand(scheduleCmd())
	command.AddCommand(listCmd())
	command.AddCommand(logsCmd())
	command.AddCommand(cancelCmd())
	command.AddCommand(daemonCmd())
	command.AddCommand(apiCmd())
	return command
}

func Run() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

func openStore(ctx context.Context) (ports.Store, func() error, error) {
	return infra.OpenStore(ctx, cfg)
}
