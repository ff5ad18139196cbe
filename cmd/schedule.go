package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitdelayed/internal/domain"
	"gitdelayed/internal/gitops"
	"gitdelayed/internal/usecase"
)

func scheduleCmd() *cobra.Command {
	var message string

	var command = &cobra.Command{
		Use:   "schedule <when> {commit|push}",
		Short: "Schedule a commit or push for future execution",
		Long: `Schedule a commit or push for future execution.

<when> accepts a relative offset (+10 hours, +2 days, +30 minutes), a weekday
name (Monday, at 09:00) or an absolute local time (2025-11-04 09:00).

  git-delayed schedule "+2 hours" commit -m "wip"
  git-delayed schedule Monday push`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.TypeCommit), string(domain.TypePush)},
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := domain.OperationType(args[1])
			if !typ.Valid() {
				return fmt.Errorf("%w: unknown action %q, want commit or push", domain.ErrInvalidOperation, args[1])
			}
			if typ == domain.TypePush && message != "" {
				return fmt.Errorf("%w: push does not take a message", domain.ErrInvalidOperation)
			}
			return runSchedule(cmd, args[0], typ, message)
		},
	}

	command.Flags().StringVarP(&message, "message", "m", "", "Commit message (commit only)")
	return command
}

func runSchedule(cmd *cobra.Command, when string, typ domain.OperationType, message string) error {
	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	enq := usecase.Enqueuer{Store: store, Git: gitops.New()}
	op, err := enq.Schedule(ctx, usecase.Request{Dir: dir, Type: typ, Message: message, When: when})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, passStyle.Render(iconPass+" Operation scheduled successfully"))
	fmt.Fprintf(out, "  ID: %s\n", op.ID)
	fmt.Fprintf(out, "  Type: %s\n", op.Type)
	fmt.Fprintf(out, "  Repository: %s\n", op.RepositoryPath)
	if op.Branch != "" {
		fmt.Fprintf(out, "  Branch: %s\n", op.Branch)
	}
	fmt.Fprintf(out, "  Scheduled for: %s\n", formatTime(op.ScheduledTime))
	if op.Type == domain.TypeCommit {
		fmt.Fprintf(out, "  Message: %s\n", op.Message)
	}
	return nil
}
