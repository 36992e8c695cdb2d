package intent

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// \w would be ASCII-only in RE2; spell out the Unicode classes so
	// accented and non-Latin letters survive preprocessing.
	punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s.?!\-']`)
)

// preprocess normalizes a raw query: lower-case, collapse whitespace, then
// replace every disallowed character with a single space. The replacement
// happens after collapsing, so stripped punctuation can leave adjacent
// spaces behind. That is intentional and relied on by the scorers.
func preprocess(query string) string {
	processed := strings.ToLower(strings.TrimSpace(query))
	processed = whitespaceRegex.ReplaceAllString(processed, " ")
	return punctuationRegex.ReplaceAllString(processed, " ")
}

// extractKeywords returns the non-stopword tokens longer than two characters,
// in query order, duplicates kept. Diagnostics only, never scored.
func (s *Service) extractKeywords(processed string) []string {
	words := strings.Fields(processed)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, stop := s.stopWords[w]; stop {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}
