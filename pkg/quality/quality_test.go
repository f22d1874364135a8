package quality_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/surviveos/ranger/pkg/quality"
)

const goodResponse = "To purify water, bring it to a rolling boil for at least one minute. " +
	"Chemical treatment with iodine tablets also works when boiling is impossible. " +
	"Always filter cloudy water through cloth before treating it."

func TestAnalyze(t *testing.T) {
	t.Run("clean response scores full marks", func(t *testing.T) {
		a := quality.Analyze(goodResponse, "")
		gt.Equal(t, a.Score, 100)
		gt.False(t, a.LowConfidence)
		gt.A(t, a.Issues).Length(0)
	})

	t.Run("uncertainty costs 25", func(t *testing.T) {
		a := quality.Analyze("I'm not sure, but you could try boiling the water first here.", "")
		gt.Equal(t, a.Score, 75)
		gt.True(t, a.HasUncertainty)
		gt.False(t, a.LowConfidence)
		gt.A(t, a.Issues).Length(1)
	})

	t.Run("confusion costs 20", func(t *testing.T) {
		a := quality.Analyze("As an AI, I can tell you that boiling water for one minute makes it safe.", "")
		gt.Equal(t, a.Score, 80)
	})

	t.Run("short response costs 30", func(t *testing.T) {
		a := quality.Analyze("Boil the water.", "")
		gt.True(t, a.TooShort)
		gt.Equal(t, a.Score, 70)
	})

	t.Run("excessive length costs 10", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 300; i++ {
			b.WriteString("sentence number one of many keeps going. ")
			b.WriteString("sentence number two of many keeps going. ")
		}
		a := quality.Analyze(b.String(), "")
		gt.True(t, a.TooLong)
		gt.True(t, a.HasRepetition)
	})

	t.Run("duplicated sentences count as repetition", func(t *testing.T) {
		text := "Always boil your water before drinking it in the field. " +
			"Shelter matters too when night falls early. " +
			"Always boil your water before drinking it in the field."
		a := quality.Analyze(text, "")
		gt.True(t, a.HasRepetition)
		gt.Equal(t, a.Score, 75)
	})

	t.Run("deductions stack and floor at zero", func(t *testing.T) {
		a := quality.Analyze("I'm sorry, but I don't know. Unclear.", "")
		gt.True(t, a.HasUncertainty)
		gt.True(t, a.TooShort)
		gt.Equal(t, a.Score, 25)
		gt.True(t, a.LowConfidence)
	})

	t.Run("ignored knowledge costs 15", func(t *testing.T) {
		injected := "### Water Purification\nBoil water rolling minute iodine tablets chlorine filter"
		a := quality.Analyze("Head north until you reach the ridge, then follow the valley down toward the trailhead sign.", injected)
		gt.Equal(t, a.Score, 85)
		gt.A(t, a.Issues).Length(1)
	})

	t.Run("knowledge vocabulary overlap passes", func(t *testing.T) {
		injected := "### Water Purification\nBoil water for one minute. Iodine tablets also treat water."
		a := quality.Analyze(goodResponse, injected)
		gt.Equal(t, a.Score, 100)
	})

	t.Run("uncertainty fires even when the knowledge block contains the phrase", func(t *testing.T) {
		injected := "### Notes\nIt is unclear which berries are safe without a field guide nearby."
		a := quality.Analyze("I'm not sure which berries are safe to eat, many look alike out there.", injected)
		gt.True(t, a.HasUncertainty)
		gt.Number(t, a.Score).Less(100)
	})
}

func TestIsDefinitelyLowQuality(t *testing.T) {
	t.Run("near-empty", func(t *testing.T) {
		gt.True(t, quality.IsDefinitelyLowQuality(""))
		gt.True(t, quality.IsDefinitelyLowQuality("Not sure."))
		gt.True(t, quality.IsDefinitelyLowQuality("   \n  "))
	})

	t.Run("bare refusal", func(t *testing.T) {
		gt.True(t, quality.IsDefinitelyLowQuality("I'm sorry, I can't help with that request at all, please ask elsewhere."))
		gt.True(t, quality.IsDefinitelyLowQuality("I cannot answer this question because it is outside what I know about."))
	})

	t.Run("under ten words", func(t *testing.T) {
		gt.True(t, quality.IsDefinitelyLowQuality("Boil the water before you drink it."))
	})

	t.Run("substantive response passes", func(t *testing.T) {
		gt.False(t, quality.IsDefinitelyLowQuality(goodResponse))
	})
}
