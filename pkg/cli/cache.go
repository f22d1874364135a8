package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/surviveos/ranger/pkg/knowledge"
	"github.com/urfave/cli/v3"
)

func cacheCommand() *cli.Command {
	var (
		cfg   config
		query string
		limit int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Question to match against the cached answers",
			Sources:     cli.EnvVars("RANGER_CACHE_QUERY"),
			Destination: &query,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of candidates to show",
			Value:       5,
			Sources:     cli.EnvVars("RANGER_CACHE_LIMIT"),
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect how the cached-answer matcher scores a question",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			corpus, err := cfg.newCorpus()
			if err != nil {
				return err
			}

			w := c.Root().Writer
			matches := corpus.TopMatches(query, int(limit))
			if len(matches) == 0 {
				fmt.Fprintf(w, "no candidates above the score threshold (%d)\n", knowledge.MinScoreThreshold)
				return nil
			}

			for i, m := range matches {
				marker := ""
				if m.Score >= knowledge.HighConfidenceThreshold {
					marker = " [high confidence]"
				}
				fmt.Fprintf(w, "%d. [%d]%s %s\n", i+1, m.Score, marker, m.QA.ID)
				fmt.Fprintf(w, "   question: %s\n", m.QA.Question)
				if len(m.MatchedKeywords) > 0 {
					fmt.Fprintf(w, "   matched:  %s\n", strings.Join(m.MatchedKeywords, ", "))
				}
			}
			return nil
		},
	}
}
