package main

import (
	"os"

	"github.com/germanamz/genprompt/pkg/mcptool"
	"github.com/germanamz/genprompt/pkg/promptclient"
	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the generate tool over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// stdout carries the protocol; logs must stay on stderr.
			cfg, logger, err := g.load(os.Stderr)
			if err != nil {
				return err
			}

			client, err := promptclient.New(ctx, cfg.Client, promptclient.WithLogger(logger))
			if err != nil {
				return err
			}

			return mcptool.New("genprompt", version, client).Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
