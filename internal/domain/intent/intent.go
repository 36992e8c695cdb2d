package intent

import (
	"fmt"

	"github.com/calyptra/mona/internal/domain"
)

// Intent is the predicted category of a query, used for routing decisions.
type Intent string

const (
	// DocumentRetrieval marks queries that need the document store.
	DocumentRetrieval Intent = "document_retrieval"
	// Conversational marks queries answerable without retrieval.
	Conversational Intent = "conversational"
)

// RuleKind selects the matching strategy of a classification rule.
type RuleKind string

const (
	// Keyword matches the pattern as a substring.
	Keyword RuleKind = "keyword"
	// Phrase matches the pattern as a substring (multi-word).
	Phrase RuleKind = "phrase"
	// Regex matches the pattern as a case-insensitive regular expression.
	Regex RuleKind = "regex"
)

// Rule maps a pattern to a category with a weight.
type Rule struct {
	Pattern     string
	Kind        RuleKind
	Weight      float64
	Category    Intent
	Description string
}

// Validate checks the rule field invariants.
func (r Rule) Validate() error {
	if r.Pattern == "" {
		return fmt.Errorf("%w: rule pattern is empty", domain.ErrInvalidConfig)
	}
	if r.Description == "" {
		return fmt.Errorf("%w: rule %q has no description", domain.ErrInvalidConfig, r.Pattern)
	}
	if r.Weight < 0 || r.Weight > 1 {
		return fmt.Errorf("%w: rule %q weight %v outside [0,1]", domain.ErrInvalidConfig, r.Pattern, r.Weight)
	}
	switch r.Kind {
	case Keyword, Phrase, Regex:
	default:
		return fmt.Errorf("%w: rule %q has unknown kind %q", domain.ErrInvalidConfig, r.Pattern, r.Kind)
	}
	switch r.Category {
	case DocumentRetrieval, Conversational:
	default:
		return fmt.Errorf("%w: rule %q has unknown category %q", domain.ErrInvalidConfig, r.Pattern, r.Category)
	}
	return nil
}

// Config holds the tunable parameters of the confidence computation.
type Config struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MaxExpectedScore    float64 `yaml:"max_expected_score"`
	SeparationWeight    float64 `yaml:"separation_weight"`
	StrengthWeight      float64 `yaml:"strength_weight"`
}

// DefaultConfig returns the default classification parameters.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.5,
		MaxExpectedScore:    6.5,
		SeparationWeight:    0.7,
		StrengthWeight:      0.3,
	}
}

// ApplyDefaults fills zero fields with default values.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if c.MaxExpectedScore == 0 {
		c.MaxExpectedScore = def.MaxExpectedScore
	}
	if c.SeparationWeight == 0 {
		c.SeparationWeight = def.SeparationWeight
	}
	if c.StrengthWeight == 0 {
		c.StrengthWeight = def.StrengthWeight
	}
}

// Validate checks the config value ranges.
func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence_threshold %v outside [0,1]", domain.ErrInvalidConfig, c.ConfidenceThreshold)
	}
	if c.MaxExpectedScore <= 0 {
		return fmt.Errorf("%w: max_expected_score %v must be positive", domain.ErrInvalidConfig, c.MaxExpectedScore)
	}
	if c.SeparationWeight < 0 || c.SeparationWeight > 1 {
		return fmt.Errorf("%w: separation_weight %v outside [0,1]", domain.ErrInvalidConfig, c.SeparationWeight)
	}
	if c.StrengthWeight < 0 || c.StrengthWeight > 1 {
		return fmt.Errorf("%w: strength_weight %v outside [0,1]", domain.ErrInvalidConfig, c.StrengthWeight)
	}
	return nil
}

// DomainStats is the fixed term-frequency table simulating a corpus.
type DomainStats struct {
	TermFrequencies map[string]int
	TotalTerms      int
}

// Validate checks the frequency table invariants.
func (s DomainStats) Validate() error {
	if s.TotalTerms <= 0 {
		return fmt.Errorf("%w: total_terms must be positive", domain.ErrInvalidConfig)
	}
	for term, freq := range s.TermFrequencies {
		if freq <= 0 {
			return fmt.Errorf("%w: term %q has non-positive frequency %d", domain.ErrInvalidConfig, term, freq)
		}
	}
	return nil
}
