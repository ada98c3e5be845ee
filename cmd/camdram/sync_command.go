package main

import (
	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/internal/sync"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Follow ranking change events from a running api-server",
	}

	var addr string
	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "Print every event from the TCP sync feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.SyncBind
			}
			var encErr error
			err = sync.Listen(cmd.Context(), addr, func(ev map[string]any) {
				if encErr == nil {
					encErr = encodeCompact(cmd, ev)
				}
			})
			if encErr != nil {
				return encErr
			}
			return err
		},
	}
	listenCmd.Flags().StringVar(&addr, "addr", "", "Sync server address (defaults to server.sync_bind)")
	syncCmd.AddCommand(listenCmd)
	return syncCmd
}
