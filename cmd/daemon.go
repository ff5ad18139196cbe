package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitdelayed/internal/daemon"
	"gitdelayed/internal/worker"
)

func daemonCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "daemon",
		Short: "Manage the background scheduler",
	}

	command.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := daemon.New(cfg.Home).Start(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, passStyle.Render(iconPass+" Daemon started"))
			fmt.Fprintf(out, "  PID: %d\n", pid)
			fmt.Fprintf(out, "  Log: %s\n", cfg.Path(daemon.LogFile))
			return nil
		},
	})

	command.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := daemon.New(cfg.Home).Stop(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), passStyle.Render(iconPass+" Daemon stopped successfully"))
			return nil
		},
	})

	command.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the daemon is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := daemon.New(cfg.Home).Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !st.Running {
				fmt.Fprintln(out, failStyle.Render(iconFail+" Daemon is not running"))
				return nil
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()
			ops, err := store.Load(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, passStyle.Render(iconPass+" Daemon is running"))
			fmt.Fprintf(out, "  PID: %d\n", st.PID)
			fmt.Fprintf(out, "  Scheduled operations: %d\n", len(ops))
			return nil
		},
	})

	var pollInterval, retryDelay = new(durationFlag), new(durationFlag)
	run := &cobra.Command{
		Use:    "run",
		Short:  "Run the scheduler in the foreground",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pollInterval.apply(&cfg.PollInterval)
			retryDelay.apply(&cfg.RetryDelay)
			return worker.Run(cfg)
		},
	}
	run.Flags().Var(pollInterval, "poll-interval", "How often to check for due operations")
	run.Flags().Var(retryDelay, "retry-delay", "How long to wait before retrying a failed operation")
	command.AddCommand(run)

	return command
}
