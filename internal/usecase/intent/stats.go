package intent

import domintent "github.com/calyptra/mona/internal/domain/intent"

// rareTermThreshold splits the frequency table: terms below it are treated
// as domain-specific, terms at or above it as conversational filler.
const rareTermThreshold = 20

// defaultDomainStats returns the fixed term-frequency table simulating a
// corpus. High counts are conversational fillers, low counts domain terms.
func defaultDomainStats() domintent.DomainStats {
	termFrequencies := map[string]int{
		"hello":  1000,
		"hi":     800,
		"thanks": 600,
		"please": 500,
		"how":    400,
		"what":   390,
		"where":  300,
		"when":   220,

		"policy":   15,
		"document": 20,
		"workflow": 8,
		"manual":   9,
		"protocol": 4,
	}

	total := 0
	for _, freq := range termFrequencies {
		total += freq
	}

	return domintent.DomainStats{
		TermFrequencies: termFrequencies,
		TotalTerms:      total,
	}
}

// defaultStopWords returns the fixed set of function words excluded from
// keyword extraction.
func defaultStopWords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
		"to", "was", "were", "will", "with", "would",
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
