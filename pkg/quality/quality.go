// Package quality grades generated responses so the orchestrator can decide
// when to fall back to raw knowledge entries instead of trusting the engine.
package quality

import (
	"regexp"
	"strings"

	"github.com/surviveos/ranger/pkg/knowledge"
)

// Analysis is the result of grading a single response. Score runs 0 to 100.
type Analysis struct {
	Score          int      `json:"score"`
	LowConfidence  bool     `json:"low_confidence"`
	HasUncertainty bool     `json:"has_uncertainty"`
	TooShort       bool     `json:"too_short"`
	TooLong        bool     `json:"too_long"`
	HasRepetition  bool     `json:"has_repetition"`
	Issues         []string `json:"issues,omitempty"`
}

const (
	lowConfidenceScore = 60
	minResponseLen     = 50
	maxResponseLen     = 2500
	minKnowledgeRatio  = 0.2
)

// uncertaintyPatterns indicate the engine lacks confidence in its answer
var uncertaintyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)i('m| am) not (sure|certain)`),
	regexp.MustCompile(`(?i)i don't know`),
	regexp.MustCompile(`(?i)i cannot (determine|say|tell)`),
	regexp.MustCompile(`(?i)i'm unsure`),
	regexp.MustCompile(`(?i)it's (hard|difficult) to (say|tell|know)`),
	regexp.MustCompile(`(?i)i'm not able to`),
	regexp.MustCompile(`(?i)unclear`),
	regexp.MustCompile(`(?i)i have no (information|knowledge)`),
	regexp.MustCompile(`(?i)cannot provide`),
	regexp.MustCompile(`(?i)beyond my (knowledge|ability)`),
}

// confusionPatterns indicate the engine is off-topic or deflecting instead
// of giving actionable advice
var confusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)as an ai`),
	regexp.MustCompile(`(?i)as a language model`),
	regexp.MustCompile(`(?i)i apologize`),
	regexp.MustCompile(`(?i)i'm sorry,? but`),
	regexp.MustCompile(`(?i)i cannot assist with`),
	regexp.MustCompile(`(?i)please consult a (doctor|professional|expert)`),
}

var refusalPrefix = regexp.MustCompile(`(?i)^(i'm sorry|i apologize|i cannot|i'm not able)`)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Analyze grades a response on a 0-100 scale. injectedKnowledge, when
// non-empty, is the knowledge block that was injected into the prompt; the
// grade drops when the response ignores its vocabulary.
func Analyze(response, injectedKnowledge string) Analysis {
	a := Analysis{Score: 100}

	for _, p := range uncertaintyPatterns {
		if p.MatchString(response) {
			a.HasUncertainty = true
			break
		}
	}
	if a.HasUncertainty {
		a.Score -= 25
		a.Issues = append(a.Issues, "Response expresses uncertainty")
	}

	for _, p := range confusionPatterns {
		if p.MatchString(response) {
			a.Score -= 20
			a.Issues = append(a.Issues, "Response seems off-topic or confused")
			break
		}
	}

	a.TooShort = len(response) < minResponseLen
	if a.TooShort {
		a.Score -= 30
		a.Issues = append(a.Issues, "Response is too short to be helpful")
	}

	a.TooLong = len(response) > maxResponseLen
	if a.TooLong {
		a.Score -= 10
		a.Issues = append(a.Issues, "Response is excessively long")
	}

	a.HasRepetition = hasRepetition(response)
	if a.HasRepetition {
		a.Score -= 25
		a.Issues = append(a.Issues, "Response contains repetitive content")
	}

	if injectedKnowledge != "" && ignoresKnowledge(response, injectedKnowledge) {
		a.Score -= 15
		a.Issues = append(a.Issues, "Response may not be using provided knowledge")
	}

	if a.Score < 0 {
		a.Score = 0
	}
	a.LowConfidence = a.Score < lowConfidenceScore

	return a
}

// ignoresKnowledge reports whether the response shares too little vocabulary
// with the injected knowledge block
func ignoresKnowledge(response, injectedKnowledge string) bool {
	knowledgeTerms := knowledge.TokenizeStrict(injectedKnowledge)
	if len(knowledgeTerms) == 0 {
		return false
	}

	responseTerms := make(map[string]bool)
	for _, term := range knowledge.TokenizeStrict(response) {
		responseTerms[term] = true
	}

	overlap := 0
	for _, term := range knowledgeTerms {
		if responseTerms[term] {
			overlap++
		}
	}
	return float64(overlap)/float64(len(knowledgeTerms)) < minKnowledgeRatio
}

// hasRepetition detects duplicated sentences and three-word phrases repeated
// three or more times
func hasRepetition(text string) bool {
	seen := make(map[string]bool)
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.ToLower(strings.TrimSpace(s))
		if len(s) <= 20 {
			continue
		}
		if seen[s] {
			return true
		}
		seen[s] = true
	}

	words := strings.Fields(strings.ToLower(text))
	phrases := make(map[string]int)
	for i := 0; i+2 < len(words); i++ {
		phrase := words[i] + " " + words[i+1] + " " + words[i+2]
		phrases[phrase]++
		if phrases[phrase] >= 3 {
			return true
		}
	}
	return false
}

// IsDefinitelyLowQuality is the cheap pre-filter: responses that are empty,
// bare refusals, or shorter than ten words never reach the user as-is.
func IsDefinitelyLowQuality(response string) bool {
	trimmed := strings.TrimSpace(response)
	if len(trimmed) < 20 {
		return true
	}
	if refusalPrefix.MatchString(trimmed) {
		return true
	}
	return len(strings.Fields(response)) < 10
}
