package knowledge

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxResults is the number of entries returned when the caller does
// not say otherwise
const DefaultMaxResults = 3

// ScoredEntry pairs an entry with its relevance score for a query
type ScoredEntry struct {
	Entry *Entry
	Score float64
}

// scoreEntry computes the additive relevance score of one entry:
//
//	+10 title contains the full query
//	 +5 per entry keyword contained verbatim in the query
//	 +2 per keyword/query-word pair where one contains the other
//	 +1 per query word found in the entry content
//
// The total is boosted by the entry's priority multiplier.
func scoreEntry(e *Entry, queryLower string, words []string) float64 {
	score := 0

	if strings.Contains(strings.ToLower(e.Title), queryLower) {
		score += 10
	}

	for _, keyword := range e.Keywords {
		if strings.Contains(queryLower, keyword) {
			score += 5
		}
		for _, w := range words {
			if strings.Contains(keyword, w) || strings.Contains(w, keyword) {
				score += 2
			}
		}
	}

	contentLower := strings.ToLower(e.Content)
	for _, w := range words {
		if strings.Contains(contentLower, w) {
			score++
		}
	}

	return float64(score) * e.Priority.boost()
}

// Search scores every entry in the corpus against the query and returns the
// top maxResults entries with a positive score, ordered by descending score.
// Ties keep corpus enumeration order.
func (c *Corpus) Search(query string, maxResults int) []*Entry {
	scored := c.searchScored(query)
	if maxResults > 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	entries := make([]*Entry, len(scored))
	for i, s := range scored {
		entries[i] = s.Entry
	}
	return entries
}

// SearchScored is like Search but keeps the scores, primarily for
// diagnostics and evaluation
func (c *Corpus) SearchScored(query string, maxResults int) []ScoredEntry {
	scored := c.searchScored(query)
	if maxResults > 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

func (c *Corpus) searchScored(query string) []ScoredEntry {
	queryLower := strings.ToLower(query)
	words := Tokenize(query)

	var scored []ScoredEntry
	for _, e := range c.AllEntries() {
		if s := scoreEntry(e, queryLower, words); s > 0 {
			scored = append(scored, ScoredEntry{Entry: e, Score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// DetectTopics guesses up to two topics for a free-text message by counting
// topic keywords found in it. Ties keep topic enumeration order.
func (c *Corpus) DetectTopics(message string) []TopicID {
	messageLower := strings.ToLower(message)

	type scoredTopic struct {
		id    TopicID
		score int
	}
	var detected []scoredTopic

	for _, id := range canonicalTopics {
		score := 0
		for _, keyword := range c.topics[id].Keywords {
			if strings.Contains(messageLower, keyword) {
				score++
			}
		}
		if score > 0 {
			detected = append(detected, scoredTopic{id: id, score: score})
		}
	}

	sort.SliceStable(detected, func(i, j int) bool {
		return detected[i].score > detected[j].score
	})
	if len(detected) > 2 {
		detected = detected[:2]
	}

	ids := make([]TopicID, len(detected))
	for i, d := range detected {
		ids[i] = d.id
	}
	return ids
}

// ExecuteTool performs topic-scoped retrieval for an explicit tool call.
// With a query it searches the corpus and keeps hits belonging to the topic;
// without one, or when nothing in the topic matched, it falls back to the
// topic's first two critical/high priority entries. An unknown topic yields
// a descriptive message rather than an error, since the result travels back
// to the generation engine as tool output.
func (c *Corpus) ExecuteTool(topicID TopicID, query string) string {
	topic, ok := c.Topic(topicID)
	if !ok {
		return fmt.Sprintf("Topic %q not found.", string(topicID))
	}

	if query != "" {
		inTopic := make(map[string]bool, len(topic.Entries))
		for _, e := range topic.Entries {
			inTopic[e.ID] = true
		}

		var hits []*Entry
		for _, e := range c.Search(query, 2) {
			if inTopic[e.ID] {
				hits = append(hits, e)
			}
		}
		if len(hits) > 0 {
			return FormatEntries(hits)
		}
	}

	var top []*Entry
	for _, e := range topic.Entries {
		if e.Priority == PriorityCritical || e.Priority == PriorityHigh {
			top = append(top, e)
			if len(top) == 2 {
				break
			}
		}
	}
	return FormatEntries(top)
}

// FormatEntries renders entries as a prompt-injectable block. The exact
// shape matters: the generation engine is prompted to treat the delimited
// section as its primary source.
func FormatEntries(entries []*Entry) string {
	if len(entries) == 0 {
		return ""
	}

	formatted := make([]string, len(entries))
	for i, e := range entries {
		formatted[i] = fmt.Sprintf("### %s\n%s", e.Title, e.Content)
	}

	return "\n---\nRELEVANT SURVIVAL KNOWLEDGE:\n" + strings.Join(formatted, "\n\n") + "\n---\n"
}

// RelevantKnowledge is the one-call retrieval path: top three entries for
// the query, formatted for injection. Empty string means nothing matched
// and the caller must not inject a knowledge section at all.
func (c *Corpus) RelevantKnowledge(query string) string {
	return FormatEntries(c.Search(query, DefaultMaxResults))
}
