package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// mimeTypes maps audio file extensions to the MIME type the engine expects
var mimeTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

func transcribeCommand() *cli.Command {
	var (
		cfg   config
		input string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to an audio file",
			Sources:     cli.EnvVars("RANGER_TRANSCRIBE_INPUT"),
			Destination: &input,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, engineFlags(&cfg)...)

	return &cli.Command{
		Name:  "transcribe",
		Usage: "Transcribe a spoken question to text",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			engine, err := cfg.newEngine(ctx)
			if err != nil {
				return err
			}

			audio, err := os.ReadFile(input)
			if err != nil {
				return goerr.Wrap(err, "failed to read audio file", goerr.V("path", input))
			}

			mimeType, ok := mimeTypes[strings.ToLower(filepath.Ext(input))]
			if !ok {
				return goerr.New("unsupported audio format", goerr.V("path", input))
			}

			transcript, err := engine.Transcribe(ctx, audio, mimeType)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Root().Writer, transcript)
			return nil
		},
	}
}
