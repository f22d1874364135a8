package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/surviveos/ranger/pkg/model"
	"github.com/urfave/cli/v3"
)

func modelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "List available models",
		Action: func(ctx context.Context, c *cli.Command) error {
			w := c.Root().Writer

			for _, m := range model.Catalog {
				marker := " "
				if m.ID == model.DefaultModelID {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %-24s %s\n", marker, m.ID, m.Name)
				fmt.Fprintf(w, "    %s\n", m.Description)
				fmt.Fprintf(w, "    quality %-5s speed %-5s context %d",
					stars(m.Quality), stars(m.Speed), m.ContextSize)
				if m.SupportsVision {
					fmt.Fprint(w, "  vision")
				}
				if m.SupportsToolCalling {
					fmt.Fprint(w, "  tools")
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
}

func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
