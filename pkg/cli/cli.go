// Package cli wires the command line surface of ranger.
package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "ranger",
		Usage: "Offline-first survival assistant",
		Commands: []*cli.Command{
			askCommand(),
			chatCommand(),
			searchCommand(),
			cacheCommand(),
			topicsCommand(),
			historyCommand(),
			evalCommand(),
			mcpCommand(),
			transcribeCommand(),
			modelsCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
