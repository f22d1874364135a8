package cli

import (
	"context"
	"fmt"

	"github.com/surviveos/ranger/pkg/model"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
		limit          int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation",
			Aliases:     []string{"c"},
			Usage:       "Show the messages of one conversation instead of the list",
			Destination: &conversationID,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of conversations to list",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, repoFlags(&cfg)...)

	return &cli.Command{
		Name:  "history",
		Usage: "List stored conversations",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			w := c.Root().Writer

			if conversationID != "" {
				msgs, err := repo.ListMessages(ctx, model.ConversationID(conversationID))
				if err != nil {
					return err
				}
				for _, m := range msgs {
					fmt.Fprintf(w, "[%s] %s: %s\n",
						m.Timestamp.Format("2006-01-02 15:04"), m.Role, m.Content)
					if m.Source != "" {
						fmt.Fprintf(w, "  (source: %s)\n", m.Source)
					}
				}
				return nil
			}

			convs, err := repo.ListConversations(ctx, 0, int(limit))
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				fmt.Fprintln(w, "no conversations stored")
				return nil
			}

			for _, conv := range convs {
				fmt.Fprintf(w, "%s  %s  (%d messages)\n",
					conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"), conv.MessageCount)
				fmt.Fprintf(w, "  %s\n", conv.Title)
			}
			return nil
		},
	}
}
