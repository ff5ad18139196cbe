package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gitdelayed/internal/domain"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			out := cmd.OutOrStdout()
			if len(ops) == 0 {
				fmt.Fprintln(out, "No scheduled operations")
				return nil
			}
			sort.SliceStable(ops, func(i, j int) bool {
				return ops[i].ScheduledTime.Before(ops[j].ScheduledTime)
			})

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCHEDULED\tTYPE\tSTATE\tRETRIES\tREPOSITORY\tBRANCH\tMESSAGE")
			for _, op := range ops {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					op.ID,
					formatTime(op.ScheduledTime),
					op.Type,
					op.State,
					op.RetryCount,
					repoName(op.RepositoryPath),
					orDash(op.Branch),
					truncate(op.Message, 40),
				)
			}
			return w.Flush()
		},
	}
}

func logsCmd() *cobra.Command {
	var limit int

	var command = &cobra.Command{
		Use:   "logs",
		Short: "Show execution history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := store.LoadLogs(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No execution logs")
				return nil
			}
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].ExecutedAt.After(entries[j].ExecutedAt)
			})
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			// styled text only in the last cell, tabwriter counts escape codes as width
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EXECUTED\tTYPE\tREPOSITORY\tMESSAGE\tID\tSTATUS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					formatTime(e.ExecutedAt),
					e.Type,
					repoName(e.RepositoryPath),
					truncate(e.Message, 30),
					e.ID,
					statusLine(e),
				)
			}
			return w.Flush()
		},
	}

	command.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries")
	return command
}

// statusLine is the coloured status followed by the error text and any
// cleanup warnings.
func statusLine(e domain.LogEntry) string {
	parts := []string{statusStyle(e.Status).Render(fmt.Sprintf("%-9s", e.Status))}
	if e.ErrorMessage != "" {
		parts = append(parts, mutedStyle.Render(e.ErrorMessage))
	}
	for _, w := range e.Warnings {
		parts = append(parts, warnStyle.Render("warning: "+w))
	}
	return strings.Join(parts, " ")
}
