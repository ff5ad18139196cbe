package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gitdelayed/internal/api"
	"gitdelayed/internal/daemon"
	"gitdelayed/internal/gitops"
)

func apiCmd() *cobra.Command {
	var addr string
	var command = &cobra.Command{
		Use:   "api",
		Short: "Serve the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.APIAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			server := api.NewServer(store, gitops.New(), daemon.New(cfg.Home))
			return server.Run(ctx, addr)
		},
	}

	command.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default $GIT_DELAYED_API_ADDR)")
	return command
}
