package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/adapter"
	"github.com/surviveos/ranger/pkg/knowledge"
	"github.com/surviveos/ranger/pkg/model"
	"github.com/surviveos/ranger/pkg/policy"
	"github.com/surviveos/ranger/pkg/prompt"
	"github.com/surviveos/ranger/pkg/quality"
	"github.com/surviveos/ranger/pkg/utils/logging"
)

// RespondInput is one user turn. An empty ConversationID starts a new
// conversation; OnToken, when set, receives display-safe streamed increments.
type RespondInput struct {
	ConversationID model.ConversationID
	Message        string
	OnToken        func(token string)
}

// Response is the outcome of one turn
type Response struct {
	ConversationID  model.ConversationID
	Response        string
	Source          model.ResponseSource
	KnowledgeID     string
	QualityScore    int
	UsedCache       bool
	UsedToolCalling bool
	FallbackReasons []string
	Metrics         *model.PerformanceMetrics
}

// generation is what the engine side of a turn produced
type generation struct {
	result    *adapter.CompletionResult
	grounded  bool
	usedTools bool
	err       error
}

// Respond runs one full turn: persist the user message, try the cached-answer
// fast path, otherwise retrieve knowledge and generate, then score the result
// and apply the fallback policy before persisting the assistant message.
func (u *UseCase) Respond(ctx context.Context, input RespondInput) (*Response, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, goerr.Wrap(ErrEmptyMessage, "nothing to respond to")
	}

	conv, err := u.loadOrCreateConversation(ctx, input.ConversationID, message)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMsg := &model.ChatMessage{
		ID:             model.NewMessageID(),
		ConversationID: conv.ID,
		Role:           model.RoleUser,
		Content:        message,
		Timestamp:      now,
	}
	if err := u.repo.PutMessage(ctx, userMsg); err != nil {
		return nil, goerr.Wrap(err, "failed to store user message")
	}
	conv.MessageCount++
	conv.Preview = model.PreviewFromContent(message)
	conv.UpdatedAt = now
	if err := u.repo.PutConversation(ctx, conv); err != nil {
		return nil, goerr.Wrap(err, "failed to store conversation")
	}

	// Cached-answer fast path: a high-confidence match answers instantly
	// without touching the engine
	if match := u.corpus.FindCachedAnswerDetails(message); match != nil && match.Score >= knowledge.HighConfidenceThreshold {
		res := &Response{
			ConversationID: conv.ID,
			Response:       match.QA.Answer,
			Source:         model.SourceKnowledgeGrounded,
			KnowledgeID:    match.QA.RelatedEntryID,
			QualityScore:   quality.Analyze(match.QA.Answer, "").Score,
			UsedCache:      true,
		}
		if err := u.persistAssistant(ctx, conv, res); err != nil {
			return nil, err
		}
		return res, nil
	}

	history, err := u.loadHistory(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	knowledgeBlock := u.corpus.RelevantKnowledge(message)
	deviceCtx := u.deviceContext()

	var filter *streamFilter
	if input.OnToken != nil {
		filter = newStreamFilter(input.OnToken)
	}

	// The engine call is the only thing that can hang, so the whole
	// generation is raced against a deadline. Abandoned work is not
	// aborted; its result is simply discarded.
	ch := make(chan generation, 1)
	go func() {
		ch <- u.generate(ctx, deviceCtx, history, knowledgeBlock, filter)
	}()

	var gen generation
	select {
	case gen = <-ch:
	case <-time.After(u.timeout):
		return nil, goerr.Wrap(ErrTimeout, "generation deadline exceeded", goerr.V("timeout", u.timeout))
	case <-ctx.Done():
		return nil, goerr.Wrap(ctx.Err(), "generation canceled")
	}
	if gen.err != nil {
		return nil, gen.err
	}

	response := CleanResponse(gen.result.Response)
	if response == "" {
		return nil, goerr.Wrap(ErrNoResponse, "engine produced no usable text")
	}

	analysis := quality.Analyze(response, knowledgeBlock)

	source := model.SourceModel
	if gen.grounded {
		source = model.SourceKnowledgeGrounded
	}

	res := &Response{
		ConversationID:  conv.ID,
		Response:        response,
		Source:          source,
		QualityScore:    analysis.Score,
		UsedToolCalling: gen.usedTools,
	}

	decision, err := u.policy.Evaluate(ctx, &policy.Input{
		Response:      response,
		Quality:       analysis,
		HasKnowledge:  knowledgeBlock != "",
		DefinitelyLow: quality.IsDefinitelyLowQuality(response),
	})
	if err != nil {
		// The policy guards answer quality; losing it must not lose the
		// answer itself
		logging.From(ctx).Warn("fallback policy evaluation failed", "error", err)
		decision = &policy.Decision{}
	}

	if decision.UseKnowledge {
		if top := u.corpus.Search(message, 1); len(top) > 0 {
			logging.From(ctx).Info("replacing low-quality response with knowledge content",
				"entry", top[0].ID, "reasons", decision.Reasons)
			res.Response = top[0].Content
			res.Source = model.SourceKnowledgeGrounded
			res.KnowledgeID = top[0].ID
			res.QualityScore = quality.Analyze(top[0].Content, "").Score
			res.FallbackReasons = decision.Reasons
		}
	}

	metrics := gen.result.Metrics
	res.Metrics = &metrics

	if err := u.persistAssistant(ctx, conv, res); err != nil {
		return nil, err
	}
	return res, nil
}

// generate runs the engine side of a turn. The tool-calling path is tried
// first when the model supports it; any failure there degrades silently to
// static knowledge injection.
func (u *UseCase) generate(ctx context.Context, deviceCtx *model.DeviceContext, history []adapter.Message, knowledgeBlock string, filter *streamFilter) generation {
	if u.modelCfg.SupportsToolCalling && len(u.registry.Specs()) > 0 {
		gen, err := u.generateWithTools(ctx, deviceCtx, history, filter)
		if err == nil {
			return gen
		}
		logging.From(ctx).Warn("tool calling failed, falling back to static injection", "error", err)
	}

	var onToken func(string)
	if filter != nil {
		onToken = filter.Feed
	}

	result, err := u.engine.Complete(ctx, &adapter.CompletionRequest{
		Model:     u.modelCfg.ID,
		System:    u.systemPrompt(ctx, deviceCtx, knowledgeBlock, false),
		Messages:  history,
		MaxTokens: u.maxTokens,
		OnToken:   onToken,
	})
	if err != nil {
		return generation{err: goerr.Wrap(err, "generation failed")}
	}

	return generation{result: result, grounded: knowledgeBlock != ""}
}

// systemPrompt composes the full system prompt: device context, persona,
// few-shot examples for small models, tool guidance when tools are attached,
// and the retrieved knowledge block last
func (u *UseCase) systemPrompt(ctx context.Context, deviceCtx *model.DeviceContext, knowledgeBlock string, withTools bool) string {
	sys := prompt.BuildSystemPrompt(deviceCtx, "")

	if u.modelCfg.Quality <= smallModelQuality {
		sys += "\n\n" + prompt.FormatFewShot(prompt.FewShotExamples)
	}
	if withTools {
		if prompts := u.registry.Prompts(ctx); prompts != "" {
			sys += "\n\n" + prompts
		}
	}
	if knowledgeBlock != "" {
		sys += "\n" + knowledgeBlock
	}
	return sys
}

func (u *UseCase) deviceContext() *model.DeviceContext {
	if u.contexts == nil {
		return nil
	}
	return u.contexts.DeviceContext()
}

func (u *UseCase) loadOrCreateConversation(ctx context.Context, id model.ConversationID, message string) (*model.Conversation, error) {
	if id == "" {
		now := time.Now()
		return &model.Conversation{
			ID:        model.NewConversationID(),
			Title:     model.TitleFromContent(message),
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}

	conv, err := u.repo.GetConversation(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load conversation", goerr.V("id", id))
	}
	return conv, nil
}

// loadHistory converts the stored conversation into engine messages. The
// current user message is already persisted and therefore included.
func (u *UseCase) loadHistory(ctx context.Context, id model.ConversationID) ([]adapter.Message, error) {
	msgs, err := u.repo.ListMessages(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load conversation history")
	}

	history := make([]adapter.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case model.RoleUser, model.RoleAssistant:
			history = append(history, adapter.Message{
				Role:    string(m.Role),
				Content: m.Content,
			})
		}
	}
	return history, nil
}

func (u *UseCase) persistAssistant(ctx context.Context, conv *model.Conversation, res *Response) error {
	now := time.Now()
	msg := &model.ChatMessage{
		ID:             model.NewMessageID(),
		ConversationID: conv.ID,
		Role:           model.RoleAssistant,
		Content:        res.Response,
		Timestamp:      now,
		Source:         res.Source,
		KnowledgeID:    res.KnowledgeID,
		Metrics:        res.Metrics,
	}
	if err := u.repo.PutMessage(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to store assistant message")
	}

	conv.MessageCount++
	conv.Preview = model.PreviewFromContent(res.Response)
	conv.UpdatedAt = now
	if err := u.repo.PutConversation(ctx, conv); err != nil {
		return goerr.Wrap(err, "failed to update conversation")
	}
	return nil
}
