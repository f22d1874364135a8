package assistant_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/surviveos/ranger/pkg/adapter"
	"github.com/surviveos/ranger/pkg/knowledge"
	"github.com/surviveos/ranger/pkg/model"
	"github.com/surviveos/ranger/pkg/repository"
	"github.com/surviveos/ranger/pkg/tool/kb"
	"github.com/surviveos/ranger/pkg/usecase/assistant"
)

type mockEngine struct {
	complete func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error)
	requests []*adapter.CompletionRequest
}

func (m *mockEngine) Complete(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
	m.requests = append(m.requests, req)
	return m.complete(ctx, req)
}

func respond(text string) func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
	return func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
		if req.OnToken != nil {
			req.OnToken(text)
		}
		return &adapter.CompletionResult{Response: text}, nil
	}
}

func newUseCase(t *testing.T, engine adapter.Engine, mutate func(*assistant.NewInput)) (*assistant.UseCase, repository.Repository) {
	t.Helper()

	corpus, err := knowledge.New()
	gt.NoError(t, err)

	repo := repository.NewMemory()
	input := assistant.NewInput{
		Engine: engine,
		Corpus: corpus,
		Repo:   repo,
	}
	if mutate != nil {
		mutate(&input)
	}

	uc, err := assistant.New(context.Background(), input)
	gt.NoError(t, err)
	return uc, repo
}

func toolCallingModel() *model.ModelConfig {
	return &model.ModelConfig{
		ID:                  "test-tool-model",
		Name:                "Test Tool Model",
		Quality:             4,
		Speed:               4,
		ContextSize:         4096,
		SupportsToolCalling: true,
	}
}

func TestRespondEmptyMessage(t *testing.T) {
	engine := &mockEngine{complete: respond("unused")}
	uc, _ := newUseCase(t, engine, nil)

	_, err := uc.Respond(context.Background(), assistant.RespondInput{Message: "   \n  "})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, assistant.ErrEmptyMessage))
	gt.A(t, engine.requests).Length(0)
}

func TestCachedAnswerFastPath(t *testing.T) {
	engine := &mockEngine{
		complete: func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
			t.Error("engine must not be called for a high-confidence cached answer")
			return nil, errors.New("unexpected call")
		},
	}
	uc, repo := newUseCase(t, engine, nil)

	res, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "How do I purify water in the wilderness?",
	})
	gt.NoError(t, err)

	gt.True(t, res.UsedCache)
	gt.Equal(t, res.Source, model.SourceKnowledgeGrounded)
	gt.Equal(t, res.KnowledgeID, "water-purification")
	gt.S(t, res.Response).Contains("Boiling")
	gt.False(t, res.UsedToolCalling)

	msgs, err := repo.ListMessages(context.Background(), res.ConversationID)
	gt.NoError(t, err)
	gt.A(t, msgs).Length(2)
	gt.Equal(t, msgs[1].Role, model.RoleAssistant)
	gt.Equal(t, msgs[1].Source, model.SourceKnowledgeGrounded)
}

func TestStaticKnowledgeInjection(t *testing.T) {
	message := "I saw a bear and I need to make a splint for a broken arm"
	answer := "Immobilize the broken arm with a stiff splint, pad it well, and back away from the bear slowly without running."

	engine := &mockEngine{complete: respond(answer)}
	uc, repo := newUseCase(t, engine, nil)

	res, err := uc.Respond(context.Background(), assistant.RespondInput{Message: message})
	gt.NoError(t, err)

	gt.A(t, engine.requests).Length(1)
	req := engine.requests[0]
	gt.S(t, req.System).Contains("RELEVANT SURVIVAL KNOWLEDGE")
	gt.A(t, req.Tools).Length(0)
	gt.A(t, req.Messages).Length(1)
	gt.Equal(t, req.Messages[0].Content, message)

	gt.Equal(t, res.Response, answer)
	gt.Equal(t, res.Source, model.SourceKnowledgeGrounded)
	gt.False(t, res.UsedCache)
	gt.False(t, res.UsedToolCalling)
	gt.Number(t, res.QualityScore).GreaterOrEqual(60)

	conv, err := repo.GetConversation(context.Background(), res.ConversationID)
	gt.NoError(t, err)
	gt.Equal(t, conv.Title, model.TitleFromContent(message))
	gt.Equal(t, conv.MessageCount, 2)
	gt.Equal(t, conv.Preview, model.PreviewFromContent(answer))
}

func TestModelOnlyResponse(t *testing.T) {
	answer := "That does not look like a survival topic, but I am glad to help with anything outdoors related."

	engine := &mockEngine{complete: respond(answer)}
	uc, _ := newUseCase(t, engine, nil)

	res, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "xyzzy plugh foobar",
	})
	gt.NoError(t, err)

	gt.S(t, engine.requests[0].System).NotContains("RELEVANT SURVIVAL KNOWLEDGE")
	gt.Equal(t, res.Source, model.SourceModel)
	gt.Equal(t, res.KnowledgeID, "")
	gt.Equal(t, res.Response, answer)
}

func TestToolCallingRoundTrip(t *testing.T) {
	answer := "Boil the stream water hard for at least one full minute, then let it cool before you drink any of it."

	engine := &mockEngine{
		complete: func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
			if len(req.Tools) > 0 {
				return &adapter.CompletionResult{
					FunctionCalls: []adapter.FunctionCall{{
						Name: kb.FunctionName,
						Args: map[string]any{"topic": "water", "query": "purify methods"},
					}},
					Metrics: model.PerformanceMetrics{
						TimeToFirstTokenMs: 120,
						TotalTimeMs:        1000,
						TotalTokens:        50,
					},
				}, nil
			}
			return &adapter.CompletionResult{
				Response: answer,
				Metrics: model.PerformanceMetrics{
					TimeToFirstTokenMs: 80,
					TotalTimeMs:        500,
					TotalTokens:        30,
				},
			}, nil
		},
	}
	uc, _ := newUseCase(t, engine, func(input *assistant.NewInput) {
		input.Model = toolCallingModel()
	})

	res, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "Best way to make stream water drinkable",
	})
	gt.NoError(t, err)

	gt.A(t, engine.requests).Length(2)

	round2 := engine.requests[1]
	gt.A(t, round2.Tools).Length(0)
	gt.A(t, round2.Messages).Length(2)
	synthetic := round2.Messages[1]
	gt.Equal(t, synthetic.Role, adapter.RoleUser)
	gt.S(t, synthetic.Content).Contains(`[Knowledge Retrieved for "water" (query: purify methods)]`)
	gt.S(t, synthetic.Content).Contains("RELEVANT SURVIVAL KNOWLEDGE")

	gt.True(t, res.UsedToolCalling)
	gt.Equal(t, res.Source, model.SourceKnowledgeGrounded)
	gt.Equal(t, res.Response, answer)

	gt.V(t, res.Metrics).NotNil()
	gt.Equal(t, res.Metrics.TimeToFirstTokenMs, int64(120))
	gt.Equal(t, res.Metrics.TotalTimeMs, int64(1500))
	gt.Equal(t, res.Metrics.TotalTokens, 80)
}

func TestToolCallingWithoutFunctionCall(t *testing.T) {
	answer := "You can walk there in about an hour if you follow the ridge line and keep the sun on your left side."

	engine := &mockEngine{
		complete: func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
			gt.A(t, req.Tools).Longer(0)
			return &adapter.CompletionResult{Response: answer}, nil
		},
	}
	uc, _ := newUseCase(t, engine, func(input *assistant.NewInput) {
		input.Model = toolCallingModel()
	})

	var streamed strings.Builder
	res, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "xyzzy plugh foobar",
		OnToken: func(token string) { streamed.WriteString(token) },
	})
	gt.NoError(t, err)

	gt.A(t, engine.requests).Length(1)
	gt.False(t, res.UsedToolCalling)
	gt.Equal(t, res.Source, model.SourceModel)
	gt.Equal(t, streamed.String(), answer)
}

func TestToolCallingDegradesToStatic(t *testing.T) {
	answer := "Immobilize the broken arm with a stiff splint, pad it well, and back away from the bear slowly without running."

	engine := &mockEngine{
		complete: func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
			if len(req.Tools) > 0 {
				return nil, errors.New("function calling unavailable")
			}
			gt.S(t, req.System).Contains("RELEVANT SURVIVAL KNOWLEDGE")
			return &adapter.CompletionResult{Response: answer}, nil
		},
	}
	uc, _ := newUseCase(t, engine, func(input *assistant.NewInput) {
		input.Model = toolCallingModel()
	})

	res, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "I saw a bear and I need to make a splint for a broken arm",
	})
	gt.NoError(t, err)

	gt.A(t, engine.requests).Length(2)
	gt.False(t, res.UsedToolCalling)
	gt.Equal(t, res.Source, model.SourceKnowledgeGrounded)
	gt.Equal(t, res.Response, answer)
}

func TestKnowledgeFallbackOnLowQuality(t *testing.T) {
	message := "I saw a bear and I need to make a splint for a broken arm"

	engine := &mockEngine{complete: respond("I'm not sure.")}
	uc, _ := newUseCase(t, engine, nil)

	corpus, err := knowledge.New()
	gt.NoError(t, err)
	expected := corpus.Search(message, 1)
	gt.A(t, expected).Longer(0)

	res, err := uc.Respond(context.Background(), assistant.RespondInput{Message: message})
	gt.NoError(t, err)

	gt.Equal(t, res.Source, model.SourceKnowledgeGrounded)
	gt.Equal(t, res.KnowledgeID, expected[0].ID)
	gt.Equal(t, res.Response, expected[0].Content)
	gt.A(t, res.FallbackReasons).Longer(0)
}

func TestTimeout(t *testing.T) {
	engine := &mockEngine{
		complete: func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
			time.Sleep(500 * time.Millisecond)
			return &adapter.CompletionResult{Response: "too late"}, nil
		},
	}
	uc, _ := newUseCase(t, engine, func(input *assistant.NewInput) {
		input.Timeout = 50 * time.Millisecond
	})

	_, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "xyzzy plugh foobar",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, assistant.ErrTimeout))
}

func TestEmptyResponseError(t *testing.T) {
	engine := &mockEngine{complete: respond("<think>never finished thinking")}
	uc, _ := newUseCase(t, engine, nil)

	_, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "xyzzy plugh foobar",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, assistant.ErrNoResponse))
}

func TestStreamingStripsThinkBlocks(t *testing.T) {
	tokens := []string{
		"<think>", "the user wants water advice", "</think>",
		"Boil all water ", "for three full minutes before you drink it in the field.",
	}

	engine := &mockEngine{
		complete: func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResult, error) {
			var raw strings.Builder
			for _, token := range tokens {
				raw.WriteString(token)
				if req.OnToken != nil {
					req.OnToken(token)
				}
			}
			return &adapter.CompletionResult{Response: raw.String()}, nil
		},
	}
	uc, _ := newUseCase(t, engine, nil)

	var streamed strings.Builder
	res, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "xyzzy plugh foobar",
		OnToken: func(token string) { streamed.WriteString(token) },
	})
	gt.NoError(t, err)

	gt.Equal(t, res.Response, "Boil all water for three full minutes before you drink it in the field.")
	gt.Equal(t, streamed.String(), res.Response)
	gt.S(t, streamed.String()).NotContains("<think>")
}

func TestConversationContinuation(t *testing.T) {
	answer := "Here is a thorough answer about that unusual request with plenty of detail for you."

	engine := &mockEngine{complete: respond(answer)}
	uc, repo := newUseCase(t, engine, nil)

	first, err := uc.Respond(context.Background(), assistant.RespondInput{
		Message: "xyzzy plugh foobar",
	})
	gt.NoError(t, err)

	second, err := uc.Respond(context.Background(), assistant.RespondInput{
		ConversationID: first.ConversationID,
		Message:        "xyzzy plugh quux",
	})
	gt.NoError(t, err)
	gt.Equal(t, second.ConversationID, first.ConversationID)

	// Second request sees the full history including the new user message
	gt.A(t, engine.requests).Length(2)
	history := engine.requests[1].Messages
	gt.A(t, history).Length(3)
	gt.Equal(t, history[0].Content, "xyzzy plugh foobar")
	gt.Equal(t, history[1].Content, answer)
	gt.Equal(t, history[2].Content, "xyzzy plugh quux")

	conv, err := repo.GetConversation(context.Background(), first.ConversationID)
	gt.NoError(t, err)
	gt.Equal(t, conv.Title, model.TitleFromContent("xyzzy plugh foobar"))
	gt.Equal(t, conv.MessageCount, 4)

	_, err = uc.Respond(context.Background(), assistant.RespondInput{
		ConversationID: model.ConversationID("missing"),
		Message:        "xyzzy plugh foobar",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, repository.ErrConversationNotFound))
}
