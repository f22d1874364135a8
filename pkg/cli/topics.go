package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

func topicsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "topics",
		Usage:     "List knowledge topics, or detect topics for a message",
		ArgsUsage: "[message]",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			corpus, err := cfg.newCorpus()
			if err != nil {
				return err
			}

			w := c.Root().Writer

			if message := strings.Join(c.Args().Slice(), " "); message != "" {
				detected := corpus.DetectTopics(message)
				if len(detected) == 0 {
					fmt.Fprintln(w, "no topics detected")
					return nil
				}
				for _, id := range detected {
					topic, _ := corpus.Topic(id)
					fmt.Fprintf(w, "%s: %s\n", id, topic.Name)
				}
				return nil
			}

			for _, topic := range corpus.Topics() {
				fmt.Fprintf(w, "%-12s %s (%d entries)\n", topic.ID, topic.Name, len(topic.Entries))
			}
			return nil
		},
	}
}
