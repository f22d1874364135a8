package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/adapter"
	"github.com/surviveos/ranger/pkg/usecase/eval"
	"github.com/urfave/cli/v3"
)

func evalCommand() *cli.Command {
	var (
		cfg       config
		input     string
		bqDataset string
		bqTable   string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a YAML query set",
			Sources:     cli.EnvVars("RANGER_EVAL_INPUT"),
			Destination: &input,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "bq-dataset",
			Usage:       "BigQuery dataset to stream eval records into",
			Sources:     cli.EnvVars("RANGER_EVAL_BQ_DATASET"),
			Destination: &bqDataset,
		},
		&cli.StringFlag{
			Name:        "bq-table",
			Usage:       "BigQuery table for eval records",
			Value:       "retrieval_eval",
			Sources:     cli.EnvVars("RANGER_EVAL_BQ_TABLE"),
			Destination: &bqTable,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, repoFlags(&cfg)...)

	return &cli.Command{
		Name:  "eval",
		Usage: "Replay a query set through retrieval and report the results",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			corpus, err := cfg.newCorpus()
			if err != nil {
				return err
			}

			set, err := eval.LoadQueries(input)
			if err != nil {
				return err
			}

			var sink adapter.EvalSink
			if bqDataset != "" {
				if cfg.project == "" {
					return goerr.New("project is required for the BigQuery sink")
				}
				sink, err = adapter.NewBigQuerySink(ctx, cfg.project, bqDataset, bqTable, eval.Record{})
				if err != nil {
					return err
				}
			}

			report, err := eval.New(corpus, sink).Run(ctx, set)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			for _, r := range report.Records {
				status := "PASS"
				if !r.Pass {
					status = "FAIL"
				}
				fmt.Fprintf(w, "[%s] %s\n", status, r.Query)
				fmt.Fprintf(w, "  entries: %v  topics: %v\n", r.TopEntryIDs, r.Topics)
				if r.CachedID != "" {
					fmt.Fprintf(w, "  cached: %s (score %d, quality %d)\n", r.CachedID, r.CacheScore, r.CachedQuality)
				}
				for _, f := range r.Failures {
					fmt.Fprintf(w, "  %s\n", f)
				}
			}
			fmt.Fprintf(w, "\n%d passed, %d failed\n", report.Passed, report.Failed)

			if report.Failed > 0 {
				return goerr.New("evaluation failed", goerr.V("failed", report.Failed))
			}
			return nil
		},
	}
}
