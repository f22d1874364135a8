package adapter

import (
	"context"
	"errors"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
)

// EvalSink receives retrieval evaluation records for offline analysis
type EvalSink interface {
	// Insert streams rows into the sink. Rows must be struct values whose
	// schema can be inferred.
	Insert(ctx context.Context, rows any) error
}

type bigquerySink struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewBigQuerySink creates an EvalSink backed by a BigQuery table. The table
// is created on first use when it does not exist, with a schema inferred
// from the given row prototype.
func NewBigQuerySink(ctx context.Context, projectID, dataset, table string, prototype any) (EvalSink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	sink := &bigquerySink{
		client:  client,
		dataset: dataset,
		table:   table,
	}

	if err := sink.ensureTable(ctx, prototype); err != nil {
		return nil, err
	}

	return sink, nil
}

func (s *bigquerySink) ensureTable(ctx context.Context, prototype any) error {
	tbl := s.client.Dataset(s.dataset).Table(s.table)

	_, err := tbl.Metadata(ctx)
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != 404 {
		return goerr.Wrap(err, "failed to get table metadata",
			goerr.V("dataset", s.dataset), goerr.V("table", s.table))
	}

	schema, err := bigquery.InferSchema(prototype)
	if err != nil {
		return goerr.Wrap(err, "failed to infer eval record schema")
	}

	if err := tbl.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return goerr.Wrap(err, "failed to create eval table",
			goerr.V("dataset", s.dataset), goerr.V("table", s.table))
	}
	return nil
}

func (s *bigquerySink) Insert(ctx context.Context, rows any) error {
	if err := s.client.Dataset(s.dataset).Table(s.table).Inserter().Put(ctx, rows); err != nil {
		return goerr.Wrap(err, "failed to insert eval records",
			goerr.V("dataset", s.dataset), goerr.V("table", s.table))
	}
	return nil
}
