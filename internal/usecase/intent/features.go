package intent

import (
	"math"
	"strings"

	domintent "github.com/calyptra/mona/internal/domain/intent"
)

var docBigrams = map[string]struct{}{
	"according to": {},
	"based on":     {},
	"mentioned in": {},
}

var convBigrams = map[string]struct{}{
	"thank you":   {},
	"please help": {},
	"can you":     {},
}

var whWords = []string{"what", "how", "where", "when", "why", "who"}

// punctuationChars mirrors the classic ASCII punctuation set used for the
// density diagnostic.
const punctuationChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// computeFeatures derives the secondary score: a TF-IDF-like term signal
// against the fixed frequency table, bigram checks, and structural
// heuristics. All contributions are additive.
func (s *Service) computeFeatures(processed string) (domintent.Scores, domintent.FeatureAnalysis) {
	var scores domintent.Scores
	words := strings.Fields(processed)
	wordCount := len(words)

	// TF-IDF-like term signal. Rare terms push toward retrieval, common
	// terms toward conversation.
	var tfidfDoc, tfidfConv float64
	for term, freq := range s.stats.TermFrequencies {
		if !strings.Contains(processed, term) {
			continue
		}
		tf := float64(strings.Count(processed, term)) / math.Max(1, float64(wordCount))
		idf := math.Log(float64(s.stats.TotalTerms+1) / float64(freq+1))
		score := tf * idf

		if freq < rareTermThreshold {
			tfidfDoc += score
		} else {
			tfidfConv += score
		}
	}
	scores.Doc += tfidfDoc
	scores.Conv += tfidfConv

	// Bigram signal over adjacent word pairs.
	matchedDoc := []string{}
	matchedConv := []string{}
	for i := 0; i+1 < len(words); i++ {
		bigram := words[i] + " " + words[i+1]
		if _, ok := docBigrams[bigram]; ok {
			matchedDoc = append(matchedDoc, bigram)
		}
		if _, ok := convBigrams[bigram]; ok {
			matchedConv = append(matchedConv, bigram)
		}
	}
	scores.Doc += 0.7 * float64(len(matchedDoc))
	scores.Conv += 0.5 * float64(len(matchedConv))

	// Structural signal: question words and question marks lean toward
	// retrieval.
	hasWH := false
	for _, w := range whWords {
		if strings.Contains(processed, w) {
			hasWH = true
			break
		}
	}
	if hasWH {
		scores.Doc += 0.8
	}

	hasQuestionMark := strings.Contains(processed, "?")
	if hasQuestionMark {
		scores.Doc += 0.6
	}

	analysis := domintent.FeatureAnalysis{
		TFIDFDoc:           tfidfDoc,
		TFIDFConv:          tfidfConv,
		BigramsDoc:         matchedDoc,
		BigramsConv:        matchedConv,
		HasWHWords:         hasWH,
		QueryLength:        wordCount,
		HasQuestionMark:    hasQuestionMark,
		PunctuationDensity: punctuationDensity(processed),
	}
	return scores, analysis
}

func punctuationDensity(s string) float64 {
	count := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(punctuationChars, s[i]) >= 0 {
			count++
		}
	}
	return float64(count) / math.Max(1, float64(len(s)))
}
