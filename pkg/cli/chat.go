package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/adapter"
	"github.com/surviveos/ranger/pkg/model"
	"github.com/surviveos/ranger/pkg/repository"
	"github.com/surviveos/ranger/pkg/usecase/assistant"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg            config
		conversationID string
		bucket         string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation",
			Aliases:     []string{"c"},
			Usage:       "Conversation ID to continue",
			Sources:     cli.EnvVars("RANGER_CONVERSATION"),
			Destination: &conversationID,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket to archive the transcript to on exit",
			Sources:     cli.EnvVars("RANGER_ARCHIVE_BUCKET"),
			Destination: &bucket,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, repoFlags(&cfg)...)
	flags = append(flags, engineFlags(&cfg)...)
	flags = append(flags, assistantFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive survival assistant session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			uc, repo, err := cfg.newAssistant(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize input")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintln(w, "Survival assistant ready. Type 'exit' to quit.")

			convID := model.ConversationID(conversationID)
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}
				if line == "exit" || line == "quit" {
					break
				}
				if line == "" {
					continue
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " thinking..."
				sp.Start()

				started := false
				res, err := uc.Respond(ctx, assistant.RespondInput{
					ConversationID: convID,
					Message:        line,
					OnToken: func(token string) {
						if !started {
							started = true
							sp.Stop()
						}
						fmt.Fprint(w, token)
					},
				})
				sp.Stop()
				if err != nil {
					fmt.Fprintf(w, "error: %v\n", err)
					continue
				}
				convID = res.ConversationID

				if !started {
					fmt.Fprint(w, res.Response)
				}
				fmt.Fprintf(w, "\n[%s, quality %d]\n\n", res.Source, res.QualityScore)
			}

			if bucket != "" && convID != "" {
				if err := archiveTranscript(ctx, repo, bucket, convID); err != nil {
					return err
				}
				fmt.Fprintf(w, "transcript archived to gs://%s\n", bucket)
			}

			fmt.Fprintln(w, "Stay safe out there.")
			return nil
		},
	}
}

// archiveTranscript writes the conversation and its messages as one JSON
// document to the archive bucket
func archiveTranscript(ctx context.Context, repo repository.Repository, bucket string, id model.ConversationID) error {
	archive, err := adapter.NewArchive(ctx, bucket)
	if err != nil {
		return err
	}

	conv, err := repo.GetConversation(ctx, id)
	if err != nil {
		return err
	}
	msgs, err := repo.ListMessages(ctx, id)
	if err != nil {
		return err
	}

	wc, err := archive.Put(ctx, id)
	if err != nil {
		return err
	}

	doc := struct {
		Conversation *model.Conversation  `json:"conversation"`
		Messages     []*model.ChatMessage `json:"messages"`
	}{Conversation: conv, Messages: msgs}

	if err := json.NewEncoder(wc).Encode(doc); err != nil {
		_ = wc.Close()
		return goerr.Wrap(err, "failed to encode transcript")
	}
	if err := wc.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize transcript")
	}
	return nil
}
