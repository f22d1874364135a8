package knowledge

import (
	"math"
	"sort"
	"strings"
)

const (
	// MinScoreThreshold is the minimum match score for a cached answer to
	// be considered at all
	MinScoreThreshold = 15

	// HighConfidenceThreshold marks matches safe to return without running
	// the generation engine
	HighConfidenceThreshold = 40

	// minQueryLen is the minimum trimmed query length for cache matching
	minQueryLen = 5

	// questionPrefixLen is how much of the cached question must appear in
	// the query to count as a direct question match
	questionPrefixLen = 20
)

// MatchResult is a scored cached-QA candidate
type MatchResult struct {
	QA              *CachedQA
	Score           int
	MatchedKeywords []string
}

// wordSimilarity grades two words: exact match 1.0, substring containment
// in either direction 0.7, otherwise 0
func wordSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.7
	}
	return 0
}

// scoreMatch scores one cached QA against a query. This is deliberately a
// different, stricter algorithm than the knowledge-entry scorer: cached
// answers bypass generation entirely, so precision matters more than recall.
func scoreMatch(qa *CachedQA, query string, queryWords []string) MatchResult {
	score := 0
	var matched []string
	queryLower := strings.ToLower(query)

	// Direct question match scores highest
	questionLower := strings.ToLower(qa.Question)
	prefix := questionLower
	if len(prefix) > questionPrefixLen {
		prefix = prefix[:questionPrefixLen]
	}
	if strings.Contains(queryLower, prefix) {
		score += 50
		matched = append(matched, "question-match")
	}

	for _, keyword := range qa.Keywords {
		if strings.Contains(queryLower, keyword) {
			score += 10
			matched = append(matched, keyword)
			continue
		}

		for _, w := range queryWords {
			sim := wordSimilarity(w, keyword)
			if sim > 0 {
				score += int(math.Round(sim * 5))
				if sim >= 0.7 && !contains(matched, keyword) {
					matched = append(matched, keyword)
				}
			}
		}
	}

	// Multiple matched keywords indicate stronger relevance
	if len(matched) >= 3 {
		score += 10
	}
	if len(matched) >= 5 {
		score += 10
	}

	return MatchResult{QA: qa, Score: score, MatchedKeywords: matched}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FindCachedAnswer returns the best cached answer at or above the minimum
// threshold, or nil when no cached answer is good enough. Absence of a
// match is a normal outcome, never an error.
func (c *Corpus) FindCachedAnswer(query string) *CachedQA {
	if best := c.FindCachedAnswerDetails(query); best != nil {
		return best.QA
	}
	return nil
}

// FindCachedAnswerDetails is FindCachedAnswer with the score and matched
// keywords attached
func (c *Corpus) FindCachedAnswerDetails(query string) *MatchResult {
	queryWords, ok := cacheQueryWords(query)
	if !ok {
		return nil
	}

	var best *MatchResult
	for _, qa := range c.cached {
		result := scoreMatch(qa, query, queryWords)
		if result.Score < MinScoreThreshold {
			continue
		}
		if best == nil || result.Score > best.Score {
			r := result
			best = &r
		}
	}
	return best
}

// IsHighConfidenceMatch reports whether the best cached answer is confident
// enough to serve without generation
func (c *Corpus) IsHighConfidenceMatch(query string) bool {
	result := c.FindCachedAnswerDetails(query)
	return result != nil && result.Score >= HighConfidenceThreshold
}

// TopMatches returns up to limit cache candidates at or above the minimum
// threshold, sorted by descending score. Used for diagnostics and UI
// suggestions.
func (c *Corpus) TopMatches(query string, limit int) []MatchResult {
	queryWords, ok := cacheQueryWords(query)
	if !ok {
		return nil
	}

	var results []MatchResult
	for _, qa := range c.cached {
		if result := scoreMatch(qa, query, queryWords); result.Score >= MinScoreThreshold {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// cacheQueryWords tokenizes the query for cache matching. Very short
// queries and queries with no usable words never match.
func cacheQueryWords(query string) ([]string, bool) {
	if len(strings.TrimSpace(query)) < minQueryLen {
		return nil, false
	}
	words := Tokenize(query)
	if len(words) == 0 {
		return nil, false
	}
	return words, true
}
