package assistant

import (
	"regexp"
	"strings"
)

// Small models leak reasoning blocks, special token markers, and raw
// function-call JSON into their visible output. These filters mirror what
// the engine-facing client strips before display.
var cleanupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<think>.*?</think>`),
	regexp.MustCompile(`(?is)<think>.*`),
	regexp.MustCompile(`<\|.*?\|>`),
	regexp.MustCompile(`(?s)\{.*"function_call".*\}`),
	regexp.MustCompile(`(?s)\{.*"name"\s*:\s*"lookup_survival_knowledge".*\}`),
}

// CleanResponse strips generation artifacts and surrounding whitespace from
// a raw engine response
func CleanResponse(response string) string {
	cleaned := response
	for _, p := range cleanupPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

// InsideThinkBlock reports whether text ends inside an unterminated
// reasoning block. Nothing should be shown to the user while this is true.
func InsideThinkBlock(text string) bool {
	lower := strings.ToLower(text)
	return strings.Count(lower, "<think>") > strings.Count(lower, "</think>")
}

// streamFilter turns the engine's raw token stream into display-safe
// increments. A delta is emitted only when the cleaned text extends what was
// already emitted; anything else, such as a tag completing and collapsing
// the cleaned text, is held back.
type streamFilter struct {
	out     func(token string)
	raw     strings.Builder
	emitted string
}

func newStreamFilter(out func(token string)) *streamFilter {
	return &streamFilter{out: out}
}

func (f *streamFilter) Feed(token string) {
	f.raw.WriteString(token)
	raw := f.raw.String()

	if InsideThinkBlock(raw) {
		return
	}

	cleaned := CleanResponse(raw)
	if cleaned == "" || !strings.HasPrefix(cleaned, f.emitted) {
		return
	}

	if delta := cleaned[len(f.emitted):]; delta != "" {
		f.emitted = cleaned
		f.out(delta)
	}
}
