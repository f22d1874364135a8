package assistant

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestCleanResponse(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected string
	}{
		"plain text untouched": {
			input:    "Boil the water first.",
			expected: "Boil the water first.",
		},
		"closed think block removed": {
			input:    "<think>reasoning here</think>Boil the water first.",
			expected: "Boil the water first.",
		},
		"unterminated think block removed to the end": {
			input:    "Boil the water first.<think>still reasoning",
			expected: "Boil the water first.",
		},
		"think tag case insensitive": {
			input:    "<THINK>loud reasoning</THINK>Answer.",
			expected: "Answer.",
		},
		"special token markers removed": {
			input:    "<|im_start|>Boil the water first.<|im_end|>",
			expected: "Boil the water first.",
		},
		"function call artifact removed": {
			input:    `{"function_call": {"name": "x"}}`,
			expected: "",
		},
		"leaked tool call removed": {
			input:    `{"name": "lookup_survival_knowledge", "arguments": {"topic": "water"}}`,
			expected: "",
		},
		"surrounding whitespace trimmed": {
			input:    "  Boil the water first.\n\n",
			expected: "Boil the water first.",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gt.Equal(t, CleanResponse(tc.input), tc.expected)
		})
	}
}

func TestInsideThinkBlock(t *testing.T) {
	gt.False(t, InsideThinkBlock("plain text"))
	gt.False(t, InsideThinkBlock("<think>done</think> more"))
	gt.True(t, InsideThinkBlock("<think>still going"))
	gt.True(t, InsideThinkBlock("<think>a</think><think>b"))
	gt.True(t, InsideThinkBlock("<THINK>case folded"))
}

func TestStreamFilter(t *testing.T) {
	t.Run("passes plain tokens through", func(t *testing.T) {
		var got []string
		f := newStreamFilter(func(token string) { got = append(got, token) })

		f.Feed("Boil ")
		f.Feed("the water ")
		f.Feed("first.")

		gt.Equal(t, strings.Join(got, ""), "Boil the water first.")
	})

	t.Run("holds tokens inside a think block", func(t *testing.T) {
		var got []string
		f := newStreamFilter(func(token string) { got = append(got, token) })

		f.Feed("<think>")
		f.Feed("internal reasoning")
		f.Feed("</think>")
		f.Feed("Boil the water ")
		f.Feed("first.")

		joined := strings.Join(got, "")
		gt.Equal(t, joined, "Boil the water first.")
		gt.S(t, joined).NotContains("reasoning")
	})

	t.Run("suppresses special token markers", func(t *testing.T) {
		var got []string
		f := newStreamFilter(func(token string) { got = append(got, token) })

		f.Feed("<|im_start|>")
		f.Feed("Answer text.")

		gt.Equal(t, strings.Join(got, ""), "Answer text.")
	})

	t.Run("single full response emits once", func(t *testing.T) {
		var got []string
		f := newStreamFilter(func(token string) { got = append(got, token) })

		f.Feed("<think>plan</think>Full answer in one piece.")

		gt.A(t, got).Length(1)
		gt.Equal(t, got[0], "Full answer in one piece.")
	})
}
