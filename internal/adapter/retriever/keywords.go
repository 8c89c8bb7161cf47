package retriever

import "strings"

// stopWords are dropped from queries before lexical scoring. Fixed
// single-language list; stemming is out of scope.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "are": {}, "was": {}, "were": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "shall": {},
	"may": {}, "might": {}, "must": {}, "can": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "with": {}, "from": {}, "into": {},
	"about": {}, "over": {}, "under": {}, "for": {}, "not": {}, "but": {},
	"all": {}, "any": {}, "each": {}, "own": {}, "out": {}, "off": {},
	"who": {}, "whom": {}, "whose": {}, "which": {}, "what": {},
	"when": {}, "where": {}, "why": {}, "how": {}, "its": {}, "his": {},
	"her": {}, "their": {}, "our": {}, "your": {}, "you": {}, "she": {},
	"him": {}, "they": {}, "them": {}, "there": {}, "here": {},
}

// ExtractKeywords derives the salient query terms: lowercase, strip
// question/exclamation marks, split on whitespace, drop stop-words and
// tokens shorter than 3 characters. Pure; an empty query yields an
// empty set.
func ExtractKeywords(query string) []string {
	cleaned := strings.NewReplacer("?", "", "!", "").Replace(strings.ToLower(query))

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// KeywordScore counts case-insensitive substring occurrences of each
// keyword in text, sums them, normalizes by the keyword count, and
// clamps to 1.0. Substring matching is deliberate: it trades precision
// for recall by catching keywords embedded in longer words. An empty
// keyword set scores 0: no keywords means no lexical signal.
func KeywordScore(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	textLower := strings.ToLower(text)

	total := 0
	for _, kw := range keywords {
		total += strings.Count(textLower, strings.ToLower(kw))
	}

	score := float64(total) / float64(len(keywords))
	if score > 1.0 {
		score = 1.0
	}
	return score
}
