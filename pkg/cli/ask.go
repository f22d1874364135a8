package cli

import (
	"context"
	"fmt"

	"github.com/surviveos/ranger/pkg/usecase/assistant"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg      config
		question string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "question",
			Aliases:     []string{"q"},
			Usage:       "Question to ask",
			Sources:     cli.EnvVars("RANGER_QUESTION"),
			Destination: &question,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, repoFlags(&cfg)...)
	flags = append(flags, engineFlags(&cfg)...)
	flags = append(flags, assistantFlags(&cfg)...)

	return &cli.Command{
		Name:  "ask",
		Usage: "Ask a single survival question",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			uc, repo, err := cfg.newAssistant(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			w := c.Root().Writer
			res, err := uc.Respond(ctx, assistant.RespondInput{
				Message: question,
				OnToken: func(token string) {
					fmt.Fprint(w, token)
				},
			})
			if err != nil {
				return err
			}

			// Cached and fallback answers are not streamed
			if res.UsedCache || res.KnowledgeID != "" {
				fmt.Fprintln(w, res.Response)
			} else {
				fmt.Fprintln(w)
			}

			fmt.Fprintf(w, "\n--\nsource: %s", res.Source)
			if res.UsedCache {
				fmt.Fprint(w, " (cached)")
			}
			if res.UsedToolCalling {
				fmt.Fprint(w, " (tool calling)")
			}
			fmt.Fprintf(w, "  quality: %d/100\n", res.QualityScore)
			if res.KnowledgeID != "" {
				fmt.Fprintf(w, "knowledge entry: %s\n", res.KnowledgeID)
			}
			if m := res.Metrics; m != nil && m.TotalTokens > 0 {
				fmt.Fprintf(w, "%d tokens in %dms (%.1f tok/s, first token %dms)\n",
					m.TotalTokens, m.TotalTimeMs, m.TokensPerSecond, m.TimeToFirstTokenMs)
			}
			return nil
		},
	}
}
