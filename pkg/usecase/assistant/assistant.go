// Package assistant drives one conversational turn from user message to a
// scored, source-tagged response: cached-answer lookup, knowledge retrieval,
// prompt composition, generation, quality analysis, and the fallback policy.
package assistant

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/adapter"
	"github.com/surviveos/ranger/pkg/knowledge"
	"github.com/surviveos/ranger/pkg/model"
	"github.com/surviveos/ranger/pkg/policy"
	"github.com/surviveos/ranger/pkg/repository"
	"github.com/surviveos/ranger/pkg/tool"
	"github.com/surviveos/ranger/pkg/tool/kb"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 1024

	// smallModelQuality is the catalog quality tier at or below which
	// few-shot examples are appended to keep small models in format
	smallModelQuality = 3
)

var (
	ErrEmptyMessage = goerr.New("message is empty")
	ErrNoResponse   = goerr.New("no response generated")
	ErrTimeout      = goerr.New("response timed out, the model may be overloaded")
)

// UseCase orchestrates conversational turns against a generation engine
type UseCase struct {
	engine   adapter.Engine
	corpus   *knowledge.Corpus
	registry *tool.Registry
	repo     repository.Repository
	policy   *policy.Evaluator
	contexts model.ContextProvider
	modelCfg *model.ModelConfig

	timeout   time.Duration
	maxTokens int32
}

// NewInput contains the collaborators of a UseCase. Engine and Corpus are
// required, everything else has a sensible default.
type NewInput struct {
	Engine   adapter.Engine
	Corpus   *knowledge.Corpus
	Registry *tool.Registry        // default: the built-in knowledge lookup tool
	Repo     repository.Repository // default: in-memory
	Policy   *policy.Evaluator     // default: the embedded fallback policy
	Contexts model.ContextProvider // optional device context source
	Model    *model.ModelConfig    // default: model.DefaultModelID

	Timeout   time.Duration
	MaxTokens int32
}

func New(ctx context.Context, input NewInput) (*UseCase, error) {
	if input.Engine == nil {
		return nil, goerr.New("engine is required")
	}
	if input.Corpus == nil {
		return nil, goerr.New("knowledge corpus is required")
	}

	uc := &UseCase{
		engine:   input.Engine,
		corpus:   input.Corpus,
		registry: input.Registry,
		repo:     input.Repo,
		policy:   input.Policy,
		contexts: input.Contexts,
		modelCfg: input.Model,

		timeout:   input.Timeout,
		maxTokens: input.MaxTokens,
	}

	if uc.registry == nil {
		uc.registry = tool.New(kb.New(input.Corpus))
	}
	if uc.repo == nil {
		uc.repo = repository.NewMemory()
	}
	if uc.policy == nil {
		evaluator, err := policy.New(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to prepare fallback policy")
		}
		uc.policy = evaluator
	}
	if uc.modelCfg == nil {
		cfg, err := model.LookupModel(model.DefaultModelID)
		if err != nil {
			return nil, err
		}
		uc.modelCfg = cfg
	}
	if uc.timeout <= 0 {
		uc.timeout = defaultTimeout
	}
	if uc.maxTokens <= 0 {
		uc.maxTokens = defaultMaxTokens
	}

	return uc, nil
}
