// Package eval replays a query set against the retrieval pipeline and
// reports how it behaves: ranked entries, detected topics, cache matches,
// and the quality of cached answers. Records can be streamed to a sink for
// offline analysis.
package eval

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/adapter"
	"github.com/surviveos/ranger/pkg/knowledge"
	"github.com/surviveos/ranger/pkg/quality"
	"gopkg.in/yaml.v3"
)

// Query is one evaluation case. Expectations are optional; a query without
// any is recorded but always passes.
type Query struct {
	Query string `yaml:"query"`

	// ExpectEntry must appear among the top ranked entry IDs
	ExpectEntry string `yaml:"expect_entry,omitempty"`

	// ExpectTopic must appear among the detected topics
	ExpectTopic string `yaml:"expect_topic,omitempty"`

	// ExpectCached must be the matched cached-answer ID
	ExpectCached string `yaml:"expect_cached,omitempty"`
}

// QuerySet is a YAML evaluation suite
type QuerySet struct {
	Queries []Query `yaml:"queries"`
}

// LoadQueries reads a query set from a YAML file
func LoadQueries(path string) (*QuerySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read query set", goerr.V("path", path))
	}

	var set QuerySet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, goerr.Wrap(err, "failed to parse query set", goerr.V("path", path))
	}
	if len(set.Queries) == 0 {
		return nil, goerr.New("query set is empty", goerr.V("path", path))
	}
	return &set, nil
}

// Record is the evaluation outcome for one query
type Record struct {
	EvaluatedAt time.Time `bigquery:"evaluated_at" json:"evaluated_at"`
	Query       string    `bigquery:"query" json:"query"`

	TopEntryIDs []string `bigquery:"top_entry_ids" json:"top_entry_ids"`
	TopScore    float64  `bigquery:"top_score" json:"top_score"`
	Topics      []string `bigquery:"topics" json:"topics"`

	CachedID       string `bigquery:"cached_id" json:"cached_id"`
	CacheScore     int    `bigquery:"cache_score" json:"cache_score"`
	HighConfidence bool   `bigquery:"high_confidence" json:"high_confidence"`

	// CachedQuality is the quality score of the matched cached answer,
	// zero when nothing matched
	CachedQuality int `bigquery:"cached_quality" json:"cached_quality"`

	Pass     bool     `bigquery:"pass" json:"pass"`
	Failures []string `bigquery:"failures" json:"failures"`
}

// Report summarizes one evaluation run
type Report struct {
	Records []Record
	Passed  int
	Failed  int
}

// UseCase runs evaluation suites against a corpus
type UseCase struct {
	corpus *knowledge.Corpus
	sink   adapter.EvalSink
}

// New creates an evaluation use case. The sink is optional.
func New(corpus *knowledge.Corpus, sink adapter.EvalSink) *UseCase {
	return &UseCase{corpus: corpus, sink: sink}
}

// Run evaluates every query in the set and, when a sink is configured,
// streams the records into it
func (u *UseCase) Run(ctx context.Context, set *QuerySet) (*Report, error) {
	report := &Report{
		Records: make([]Record, 0, len(set.Queries)),
	}

	now := time.Now()
	for _, q := range set.Queries {
		record := u.evaluate(q, now)
		if record.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Records = append(report.Records, record)
	}

	if u.sink != nil {
		if err := u.sink.Insert(ctx, report.Records); err != nil {
			return nil, goerr.Wrap(err, "failed to store eval records")
		}
	}

	return report, nil
}

func (u *UseCase) evaluate(q Query, now time.Time) Record {
	record := Record{
		EvaluatedAt: now,
		Query:       q.Query,
		Pass:        true,
	}

	scored := u.corpus.SearchScored(q.Query, knowledge.DefaultMaxResults)
	for _, s := range scored {
		record.TopEntryIDs = append(record.TopEntryIDs, s.Entry.ID)
	}
	if len(scored) > 0 {
		record.TopScore = scored[0].Score
	}

	for _, id := range u.corpus.DetectTopics(q.Query) {
		record.Topics = append(record.Topics, string(id))
	}

	if match := u.corpus.FindCachedAnswerDetails(q.Query); match != nil {
		record.CachedID = match.QA.ID
		record.CacheScore = match.Score
		record.HighConfidence = match.Score >= knowledge.HighConfidenceThreshold
		record.CachedQuality = quality.Analyze(match.QA.Answer, "").Score
	}

	u.check(&record, q)
	return record
}

func (u *UseCase) check(record *Record, q Query) {
	if q.ExpectEntry != "" && !containsString(record.TopEntryIDs, q.ExpectEntry) {
		record.fail(fmt.Sprintf("expected entry %q in top results, got %v", q.ExpectEntry, record.TopEntryIDs))
	}
	if q.ExpectTopic != "" && !containsString(record.Topics, q.ExpectTopic) {
		record.fail(fmt.Sprintf("expected topic %q, detected %v", q.ExpectTopic, record.Topics))
	}
	if q.ExpectCached != "" && record.CachedID != q.ExpectCached {
		record.fail(fmt.Sprintf("expected cached answer %q, got %q", q.ExpectCached, record.CachedID))
	}
}

func (r *Record) fail(reason string) {
	r.Pass = false
	r.Failures = append(r.Failures, reason)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
