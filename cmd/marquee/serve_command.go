package main

import (
	"github.com/spf13/cobra"

	"marquee/internal/mcpserver"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tool interface over stdio",
		Long: "Serve exposes the discovery, quality, and sync workflows as MCP tools\n" +
			"over stdin/stdout for use by MCP-capable clients.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := ctx.ensureService()
			if err != nil {
				return err
			}
			return mcpserver.New(service, appVersion, ctx.logger).Serve()
		},
	}
}
