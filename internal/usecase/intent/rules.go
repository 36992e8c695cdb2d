package intent

import (
	"fmt"
	"regexp"

	domintent "github.com/calyptra/mona/internal/domain/intent"
)

// compiledRule pairs a rule with its compiled regex. For keyword and phrase
// rules re stays nil. A regex that fails to compile keeps its error here and
// is reported per call instead of aborting construction or scoring.
type compiledRule struct {
	rule       domintent.Rule
	re         *regexp.Regexp
	compileErr error
}

// docTerms are domain vocabulary keywords pointing at document retrieval.
var docTerms = []string{
	"document", "file", "pdf", "report", "policy", "procedure",
	"specification", "manual", "guide", "regulation", "compliance",
	"workflow", "protocol", "standard", "requirement", "documentation",
	"docs",
}

// complianceTerms overlap with docTerms on purpose: a query hitting both
// lists scores the keyword twice, matching the tuned weights downstream.
var complianceTerms = []string{
	"regulation", "requirement", "guideline", "protocol", "compliance",
}

var infoPatterns = []string{
	"what does", "how does", "where can", "show me", "find me",
	"search for", "look up", "according to", "based on", "mentioned in",
	"specified in", "outlined in", "detailed in", "described in", "defined in",
}

var greetingPatterns = []string{
	`^(hi|hello|hey|good\s+(morning|afternoon|evening))`,
	`\b(thanks?|thank\s+you)\b`,
	`\b(bye|goodbye|see\s+you|farewell)\b`,
	`^(how\s+are\s+you|how's\s+it\s+going|what's\s+up)\b`,
}

var personalPhrases = []string{
	"i think", "i believe", "i feel", "in my opinion", "personally",
	"i like", "i prefer", "i want", "i need", "can you help",
	"could you", "would you", "please help",
}

var generalKnowledge = []string{
	"tell me about", "explain", "what's the difference between", "compare",
	"why do", "fun fact", "famous", "popular", "best", "worst", "recommend",
}

// defaultRules returns the fixed ordered rule table.
func defaultRules() []domintent.Rule {
	rules := make([]domintent.Rule, 0, 64)

	for _, term := range docTerms {
		rules = append(rules, domintent.Rule{
			Pattern:     term,
			Kind:        domintent.Keyword,
			Weight:      0.9,
			Category:    domintent.DocumentRetrieval,
			Description: "Document-related term: " + term,
		})
	}
	for _, term := range complianceTerms {
		rules = append(rules, domintent.Rule{
			Pattern:     term,
			Kind:        domintent.Keyword,
			Weight:      0.9,
			Category:    domintent.DocumentRetrieval,
			Description: "Document-related term: " + term,
		})
	}
	for _, pattern := range infoPatterns {
		rules = append(rules, domintent.Rule{
			Pattern:     pattern,
			Kind:        domintent.Phrase,
			Weight:      0.7,
			Category:    domintent.DocumentRetrieval,
			Description: "Information-seeking pattern: " + pattern,
		})
	}

	rules = append(rules, domintent.Rule{
		Pattern:     `\b(step\s+\d+|section\s+\d+|page\s+\d+|chapter\s+\d+)\b`,
		Kind:        domintent.Regex,
		Weight:      0.8,
		Category:    domintent.DocumentRetrieval,
		Description: "Procedural reference pattern",
	})

	for _, pattern := range greetingPatterns {
		rules = append(rules, domintent.Rule{
			Pattern:     pattern,
			Kind:        domintent.Regex,
			Weight:      0.95,
			Category:    domintent.Conversational,
			Description: "Greeting pattern: " + pattern,
		})
	}

	// Short acknowledgements must cover the whole query, not a fragment.
	rules = append(rules, domintent.Rule{
		Pattern:     `^(ok|okay|yes|no|sure|alright|got\s+it)$`,
		Kind:        domintent.Regex,
		Weight:      0.95,
		Category:    domintent.Conversational,
		Description: "Informal response pattern",
	})

	for _, phrase := range personalPhrases {
		rules = append(rules, domintent.Rule{
			Pattern:     phrase,
			Kind:        domintent.Phrase,
			Weight:      0.8,
			Category:    domintent.Conversational,
			Description: "Personal/general phrase: " + phrase,
		})
	}
	for _, phrase := range generalKnowledge {
		rules = append(rules, domintent.Rule{
			Pattern:     phrase,
			Kind:        domintent.Phrase,
			Weight:      0.8,
			Category:    domintent.Conversational,
			Description: "Personal/general phrase: " + phrase,
		})
	}

	return rules
}

// compileRules validates field invariants and compiles regex rules.
// Field violations abort; uncompilable regexes do not.
func compileRules(rules []domintent.Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("build classification rules: %w", err)
		}

		cr := compiledRule{rule: r}
		if r.Kind == domintent.Regex {
			cr.re, cr.compileErr = regexp.Compile("(?i)" + r.Pattern)
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}
