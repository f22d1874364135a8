package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg   config
		query string
		limit int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Query to rank knowledge entries against",
			Sources:     cli.EnvVars("RANGER_SEARCH_QUERY"),
			Destination: &query,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of entries to return",
			Value:       5,
			Sources:     cli.EnvVars("RANGER_SEARCH_LIMIT"),
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "search",
		Usage: "Rank knowledge entries for a query",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			corpus, err := cfg.newCorpus()
			if err != nil {
				return err
			}

			w := c.Root().Writer
			scored := corpus.SearchScored(query, int(limit))
			if len(scored) == 0 {
				fmt.Fprintln(w, "no matching entries")
				return nil
			}

			for i, s := range scored {
				fmt.Fprintf(w, "%d. [%.1f] %s (%s, %s)\n",
					i+1, s.Score, s.Entry.Title, s.Entry.ID, s.Entry.Priority)
			}
			return nil
		},
	}
}
