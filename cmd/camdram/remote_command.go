package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cheeseechops/CamdramAPI/internal/grpcserver"
)

func newRemoteCommand(ctx *commandContext) *cobra.Command {
	var addr string
	remoteCmd := &cobra.Command{
		Use:   "remote",
		Short: "Query a running grpc-server",
	}
	remoteCmd.PersistentFlags().StringVar(&addr, "addr", "", "gRPC server address (defaults to server.grpc_bind)")

	var (
		limit  int
		search string
		active bool
		asJSON bool
	)
	topCmd := &cobra.Command{
		Use:   "top",
		Short: "Show the people with the most credits from the remote service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.GRPCBind
			}
			conn, err := grpcserver.Dial(addr)
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
			}
			defer conn.Close()

			page, err := grpcserver.NewClient(conn).ListPeople(cmd.Context(), &grpcserver.ListPeopleRequest{
				Search:     search,
				ActiveOnly: active,
				Page:       1,
				PerPage:    limit,
			})
			if err != nil {
				return fmt.Errorf("list people: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, page)
			}
			printPeoplePage(cmd, *page)
			return nil
		},
	}
	topCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Rows to fetch")
	topCmd.Flags().StringVarP(&search, "search", "s", "", "Only people whose name contains this text")
	topCmd.Flags().BoolVar(&active, "active", false, "Only people credited within the active window")
	topCmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	remoteCmd.AddCommand(topCmd)
	return remoteCmd
}
