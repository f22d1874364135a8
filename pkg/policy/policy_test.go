package policy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/surviveos/ranger/pkg/policy"
	"github.com/surviveos/ranger/pkg/quality"
)

func TestEmbeddedFallbackPolicy(t *testing.T) {
	ctx := context.Background()
	eval, err := policy.New(ctx)
	gt.NoError(t, err)

	t.Run("good response passes through", func(t *testing.T) {
		decision, err := eval.Evaluate(ctx, &policy.Input{
			Quality:      quality.Analysis{Score: 100},
			HasKnowledge: true,
		})
		gt.NoError(t, err)
		gt.False(t, decision.UseKnowledge)
	})

	t.Run("low confidence with knowledge falls back", func(t *testing.T) {
		decision, err := eval.Evaluate(ctx, &policy.Input{
			Quality:      quality.Analysis{Score: 25, LowConfidence: true, HasUncertainty: true},
			HasKnowledge: true,
		})
		gt.NoError(t, err)
		gt.True(t, decision.UseKnowledge)
		gt.A(t, decision.Reasons).Longer(0)
	})

	t.Run("definitely low quality falls back", func(t *testing.T) {
		decision, err := eval.Evaluate(ctx, &policy.Input{
			Quality:       quality.Analysis{Score: 70},
			HasKnowledge:  true,
			DefinitelyLow: true,
		})
		gt.NoError(t, err)
		gt.True(t, decision.UseKnowledge)
	})

	t.Run("no knowledge to fall back to", func(t *testing.T) {
		decision, err := eval.Evaluate(ctx, &policy.Input{
			Quality:       quality.Analysis{Score: 0, LowConfidence: true},
			DefinitelyLow: true,
		})
		gt.NoError(t, err)
		gt.False(t, decision.UseKnowledge)
	})
}

func TestPolicyDirOverride(t *testing.T) {
	ctx := context.Background()

	t.Run("custom policy replaces the shipped one", func(t *testing.T) {
		dir := t.TempDir()
		custom := `package fallback

default use_knowledge := true
`
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "fallback.rego"), []byte(custom), 0o644))

		eval, err := policy.NewFromDir(ctx, dir)
		gt.NoError(t, err)

		decision, err := eval.Evaluate(ctx, &policy.Input{Quality: quality.Analysis{Score: 100}})
		gt.NoError(t, err)
		gt.True(t, decision.UseKnowledge)
	})

	t.Run("empty directory is an error", func(t *testing.T) {
		_, err := policy.NewFromDir(ctx, t.TempDir())
		gt.Error(t, err)
	})
}
