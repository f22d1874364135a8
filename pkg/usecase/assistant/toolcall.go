package assistant

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/adapter"
	"github.com/surviveos/ranger/pkg/model"
	"google.golang.org/genai"
)

// generateWithTools runs the dynamic retrieval path: round one offers the
// tool schema to the engine, any requested lookups are executed and fed back
// as a synthetic user message, and round two produces the final answer with
// no tools attached. Metrics are merged across rounds.
func (u *UseCase) generateWithTools(ctx context.Context, deviceCtx *model.DeviceContext, history []adapter.Message, filter *streamFilter) (generation, error) {
	system := u.systemPrompt(ctx, deviceCtx, "", true)

	round1, err := u.engine.Complete(ctx, &adapter.CompletionRequest{
		Model:     u.modelCfg.ID,
		System:    system,
		Messages:  history,
		Tools:     u.registry.Specs(),
		MaxTokens: u.maxTokens,
	})
	if err != nil {
		return generation{}, goerr.Wrap(err, "tool round failed")
	}

	if len(round1.FunctionCalls) == 0 {
		// No lookup requested, the first answer is final. It was not
		// streamed, so emit it in one piece.
		if filter != nil {
			filter.Feed(round1.Response)
		}
		return generation{result: round1}, nil
	}

	messages := make([]adapter.Message, len(history), len(history)+len(round1.FunctionCalls))
	copy(messages, history)

	for _, fc := range round1.FunctionCalls {
		fr, err := u.registry.Execute(ctx, genai.FunctionCall{Name: fc.Name, Args: fc.Args})
		if err != nil {
			return generation{}, goerr.Wrap(err, "tool execution failed", goerr.V("function", fc.Name))
		}
		messages = append(messages, adapter.Message{
			Role:    adapter.RoleUser,
			Content: formatToolResult(fc, fr),
		})
	}

	var onToken func(string)
	if filter != nil {
		onToken = filter.Feed
	}

	round2, err := u.engine.Complete(ctx, &adapter.CompletionRequest{
		Model:     u.modelCfg.ID,
		System:    system,
		Messages:  messages,
		MaxTokens: u.maxTokens,
		OnToken:   onToken,
	})
	if err != nil {
		return generation{}, goerr.Wrap(err, "final round failed")
	}

	round2.Metrics = round1.Metrics.Merge(round2.Metrics)
	return generation{result: round2, grounded: true, usedTools: true}, nil
}

// formatToolResult renders a tool result as the synthetic user message the
// final generation round sees
func formatToolResult(fc adapter.FunctionCall, fr *genai.FunctionResponse) string {
	topic, _ := fc.Args["topic"].(string)
	query, _ := fc.Args["query"].(string)
	result, _ := fr.Response["result"].(string)

	return fmt.Sprintf("[Knowledge Retrieved for %q (query: %s)]\n%s", topic, query, result)
}
