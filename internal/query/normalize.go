package query

import (
	"strings"
)

// Interrogative and auxiliary words carry no retrieval signal for a keyword
// backend and are stripped before issuing the search.
var questionWords = map[string]bool{
	"what": true, "when": true, "where": true, "who": true, "why": true,
	"how": true, "which": true, "can": true, "could": true, "would": true,
	"will": true, "do": true, "does": true, "did": true, "is": true,
	"are": true, "was": true, "were": true,
}

const punctuation = ".,!?;:"

// Normalize reduces a conversational query to its content keywords: trim,
// lower-case, split on whitespace, strip surrounding punctuation, drop
// question words and tokens of length <= 2, rejoin with single spaces.
// When fewer than 2 tokens survive the filter, the trimmed original query
// is returned instead so the backend never sees a degenerate near-empty
// query. The function is pure and idempotent.
func Normalize(q string) string {
	trimmed := strings.TrimSpace(q)

	var keywords []string
	for word := range strings.FieldsSeq(strings.ToLower(trimmed)) {
		if questionWords[word] {
			continue
		}
		word = strings.Trim(word, punctuation)
		if len(word) <= 2 {
			continue
		}
		keywords = append(keywords, word)
	}

	if len(keywords) < 2 {
		return trimmed
	}
	return strings.Join(keywords, " ")
}
