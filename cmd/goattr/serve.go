package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/goattr/internal/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := mcp.NewServer(a.cfg, a.logger.WithPrefix("mcp"))
			if err != nil {
				return err
			}

			errChan := make(chan error, 1)
			go func() {
				errChan <- server.Serve(cmd.Context())
			}()

			select {
			case <-cmd.Context().Done():
				a.logger.Info("shutting down")
				return server.Close()
			case err := <-errChan:
				return err
			}
		},
	}
}
