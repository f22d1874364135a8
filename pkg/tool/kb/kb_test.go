package kb_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/surviveos/ranger/pkg/knowledge"
	"github.com/surviveos/ranger/pkg/tool"
	"github.com/surviveos/ranger/pkg/tool/kb"
	"google.golang.org/genai"
)

func newTool(t *testing.T) tool.Tool {
	t.Helper()
	corpus, err := knowledge.New()
	gt.NoError(t, err)
	return kb.New(corpus)
}

func TestSpec(t *testing.T) {
	spec := newTool(t).Spec()

	gt.A(t, spec.FunctionDeclarations).Length(1)
	fd := spec.FunctionDeclarations[0]
	gt.Equal(t, fd.Name, kb.FunctionName)
	gt.Equal(t, fd.Parameters.Required, []string{"topic"})
	gt.A(t, fd.Parameters.Properties["topic"].Enum).Length(8)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	x := newTool(t)

	t.Run("topic with query", func(t *testing.T) {
		resp, err := x.Execute(ctx, genai.FunctionCall{
			Name: kb.FunctionName,
			Args: map[string]any{"topic": "water", "query": "how to purify water by boiling"},
		})
		gt.NoError(t, err)
		gt.Equal(t, resp.Name, kb.FunctionName)

		result := gt.Cast[string](t, resp.Response["result"])
		gt.S(t, result).Contains("RELEVANT SURVIVAL KNOWLEDGE")
		gt.S(t, result).Contains("Water Purification")
	})

	t.Run("topic without query falls back to priority entries", func(t *testing.T) {
		resp, err := x.Execute(ctx, genai.FunctionCall{
			Name: kb.FunctionName,
			Args: map[string]any{"topic": "fire"},
		})
		gt.NoError(t, err)

		result := gt.Cast[string](t, resp.Response["result"])
		gt.S(t, result).Contains("RELEVANT SURVIVAL KNOWLEDGE")
	})

	t.Run("invalid topic reported as tool output", func(t *testing.T) {
		resp, err := x.Execute(ctx, genai.FunctionCall{
			Name: kb.FunctionName,
			Args: map[string]any{"topic": "weather"},
		})
		gt.NoError(t, err)

		result := gt.Cast[string](t, resp.Response["result"])
		gt.S(t, result).Contains(`Invalid topic "weather"`)
		gt.S(t, result).Contains("first-aid, water, shelter")
	})
}

func TestRegistryRouting(t *testing.T) {
	ctx := context.Background()
	registry := tool.New(newTool(t))

	gt.A(t, registry.Specs()).Length(1)
	gt.Equal(t, registry.Names(), []string{kb.FunctionName})
	gt.S(t, registry.Prompts(ctx)).Contains("lookup_survival_knowledge")

	t.Run("routes declared function", func(t *testing.T) {
		resp, err := registry.Execute(ctx, genai.FunctionCall{
			Name: kb.FunctionName,
			Args: map[string]any{"topic": "navigation", "query": "lost"},
		})
		gt.NoError(t, err)
		gt.V(t, resp).NotNil()
	})

	t.Run("unknown function is an error", func(t *testing.T) {
		_, err := registry.Execute(ctx, genai.FunctionCall{Name: "no_such_tool"})
		gt.Error(t, err)
	})
}
