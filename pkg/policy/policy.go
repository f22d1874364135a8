// Package policy decides, via Rego, when a generated response should be
// replaced by raw knowledge content. The shipped policy can be overridden
// with a directory of .rego files.
package policy

import (
	"context"
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/surviveos/ranger/pkg/quality"
)

//go:embed policy/*.rego
var embeddedPolicy embed.FS

const fallbackQuery = "data.fallback"

// Input is what the fallback policy sees for one response
type Input struct {
	Response      string
	Quality       quality.Analysis
	HasKnowledge  bool
	DefinitelyLow bool
	UsedCache     bool
}

// Decision is the policy verdict
type Decision struct {
	UseKnowledge bool
	Reasons      []string
}

// Evaluator evaluates the fallback policy
type Evaluator struct {
	query *rego.PreparedEvalQuery
}

// New prepares the embedded fallback policy
func New(ctx context.Context) (*Evaluator, error) {
	var modules []func(*rego.Rego)
	err := fs.WalkDir(embeddedPolicy, "policy", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := embeddedPolicy.ReadFile(path)
		if err != nil {
			return goerr.Wrap(err, "failed to read embedded policy", goerr.V("path", path))
		}
		modules = append(modules, rego.Module(path, string(data)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return prepare(ctx, modules)
}

// NewFromDir prepares a fallback policy from .rego files in dir
func NewFromDir(ctx context.Context, dir string) (*Evaluator, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", dir))
	}
	if len(files) == 0 {
		return nil, goerr.New("no policy files found", goerr.V("dir", dir))
	}

	modules := make([]func(*rego.Rego), 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		modules = append(modules, rego.Module(file, string(data)))
	}

	return prepare(ctx, modules)
}

func prepare(ctx context.Context, modules []func(*rego.Rego)) (*Evaluator, error) {
	options := append([]func(*rego.Rego){rego.Query(fallbackQuery)}, modules...)

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare fallback policy")
	}

	return &Evaluator{query: &prepared}, nil
}

// Evaluate runs the fallback policy for one response
func (e *Evaluator) Evaluate(ctx context.Context, input *Input) (*Decision, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]any{
		"response": input.Response,
		"quality": map[string]any{
			"score":           input.Quality.Score,
			"low_confidence":  input.Quality.LowConfidence,
			"has_uncertainty": input.Quality.HasUncertainty,
			"too_short":       input.Quality.TooShort,
			"too_long":        input.Quality.TooLong,
			"has_repetition":  input.Quality.HasRepetition,
			"issues":          input.Quality.Issues,
		},
		"has_knowledge":  input.HasKnowledge,
		"definitely_low": input.DefinitelyLow,
		"used_cache":     input.UsedCache,
	}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate fallback policy")
	}

	decision := &Decision{}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return decision, nil
	}

	result, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, goerr.New("unexpected fallback policy result", goerr.V("value", rs[0].Expressions[0].Value))
	}

	if v, ok := result["use_knowledge"].(bool); ok {
		decision.UseKnowledge = v
	}
	if reasons, ok := result["reasons"].([]any); ok {
		for _, r := range reasons {
			if s, ok := r.(string); ok {
				decision.Reasons = append(decision.Reasons, s)
			}
		}
	}

	return decision, nil
}
