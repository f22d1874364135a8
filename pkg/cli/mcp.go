package cli

import (
	"context"

	"github.com/surviveos/ranger/pkg/service/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the knowledge base as MCP tools over stdio",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			corpus, err := cfg.newCorpus()
			if err != nil {
				return err
			}

			return mcp.Serve(ctx, corpus)
		},
	}
}
