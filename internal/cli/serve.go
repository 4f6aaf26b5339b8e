package cli

import (
	"github.com/spf13/cobra"

	"github.com/famomatic/ytstream/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve metadata and proxied streams over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.opts.File.Server.Addr
			}
			srv := server.New(server.Config{
				Addr:         addr,
				Client:       a.client,
				Logger:       a.logger,
				RequestLimit: a.opts.File.Server.RequestLimit,
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+server.DefaultAddr+")")
	return cmd
}
