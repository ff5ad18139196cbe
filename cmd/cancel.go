package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitdelayed/internal/usecase"
)

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a scheduled operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			op, err := usecase.Canceller{Store: store}.Cancel(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), passStyle.Render(iconPass+" Operation cancelled: "+op.ID))
			return nil
		},
	}
}
