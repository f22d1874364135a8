package knowledge

import "strings"

// stopWords are common words ignored during matching
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "must": true, "shall": true, "can": true,
	"to": true, "of": true, "in": true, "for": true, "on": true,
	"with": true, "at": true, "by": true, "from": true, "or": true,
	"and": true, "not": true, "if": true, "but": true, "as": true,
	"it": true, "this": true, "that": true, "which": true, "who": true,
	"whom": true, "what": true, "your": true, "you": true, "i": true,
	"me": true, "my": true, "we": true, "our": true, "they": true,
	"their": true, "them": true, "how": true, "when": true, "where": true,
	"why": true,
}

// Tokenize normalizes free text into the filtered word list used by the
// retrieval scorers: lowercase, non-alphabetic characters become spaces,
// words of three or more characters survive, stop words are dropped.
// Duplicates are removed, preserving first-occurrence order. Empty or
// punctuation-only input yields an empty result, which every scorer treats
// as "no match possible".
func Tokenize(text string) []string {
	return tokenize(text, 2)
}

// TokenizeStrict is the stricter variant used by the quality term-overlap
// check: words must be longer than three characters.
func TokenizeStrict(text string) []string {
	return tokenize(text, 3)
}

func tokenize(text string, minLen int) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.Fields(b.String()) {
		if len(w) <= minLen || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}
