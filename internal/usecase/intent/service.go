package intent

import (
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/calyptra/mona/internal/domain"
	domintent "github.com/calyptra/mona/internal/domain/intent"
	"github.com/calyptra/mona/internal/metrics"
)

// Service is the rule-based query intent classifier. It decides whether a
// query needs document retrieval without calling an LLM: weighted pattern
// rules, a TF-IDF-like term signal, bigram checks, and structural
// heuristics are merged into per-category scores and a confidence value.
//
// All tables are built once at construction and never mutated, so Classify
// is safe for concurrent use.
type Service struct {
	cfg       domintent.Config
	rules     []compiledRule
	stats     domintent.DomainStats
	stopWords map[string]struct{}
	logger    *zap.Logger
}

// New creates a classifier with the fixed rule table, domain statistics,
// and stop words. extraRules are appended after the built-in table; their
// field invariants are validated the same way and abort construction when
// violated.
func New(cfg domintent.Config, logger *zap.Logger, extraRules ...domintent.Rule) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("classifier config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rules := append(defaultRules(), extraRules...)
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}

	stats := defaultDomainStats()
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("domain statistics: %w", err)
	}

	return &Service{
		cfg:       cfg,
		rules:     compiled,
		stats:     stats,
		stopWords: defaultStopWords(),
		logger:    logger,
	}, nil
}

// Classify analyzes a query and returns the routing decision with full
// diagnostics. The call is synchronous and CPU-bound; it never blocks.
func (s *Service) Classify(query string) (result domintent.Result, err error) {
	if !utf8.ValidString(query) {
		return domintent.Result{}, fmt.Errorf("%w: query is not valid text", domain.ErrInvalidInput)
	}

	start := time.Now()

	// Internal faults surface as a single classification error naming the
	// query, never as a partial result.
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewClassificationError(query, fmt.Errorf("panic: %v", r))
			s.logger.Error("classification panic recovered",
				zap.String("query", query),
				zap.Any("panic", r),
			)
		}
	}()

	processed := preprocess(query)

	ruleScores, patternAnalysis := s.scoreRules(processed)
	featureScores, featureAnalysis := s.computeFeatures(processed)

	docTotal := ruleScores.Doc + featureScores.Doc
	convTotal := ruleScores.Conv + featureScores.Conv

	confidence := s.estimateConfidence(docTotal, convTotal)

	// Ties (including the all-zero case of an empty or unmatched query)
	// resolve to retrieval.
	classification := domintent.Conversational
	if docTotal >= convTotal {
		classification = domintent.DocumentRetrieval
	}

	elapsed := time.Since(start)

	result = domintent.Result{
		NeedsRetrieval: classification == domintent.DocumentRetrieval,
		Classification: classification,
		Confidence:     confidence,
		FeatureScores: domintent.Diagnostics{
			DocumentFinalScore:       docTotal,
			ConversationalFinalScore: convTotal,
			Confidence:               confidence,
			Patterns:                 patternAnalysis,
			Features:                 featureAnalysis,
			Meta: domintent.ProcessingMeta{
				OriginalQuery:       query,
				ProcessedQuery:      processed,
				ExtractedKeywords:   s.extractKeywords(processed),
				TotalRulesEvaluated: len(s.rules),
			},
		},
		ProcessingTimeMS: float64(elapsed.Microseconds()) / 1000.0,
	}

	metrics.ClassificationsTotal.WithLabelValues(string(classification)).Inc()
	metrics.ClassificationDuration.Observe(elapsed.Seconds())

	s.logger.Debug("query classified",
		zap.String("classification", string(classification)),
		zap.Float64("confidence", confidence),
		zap.Float64("doc_score", docTotal),
		zap.Float64("conv_score", convTotal),
		zap.Int("matched_rules", patternAnalysis.TotalMatches),
	)

	return result, nil
}

// RuleCount returns the number of rules in the table.
func (s *Service) RuleCount() int { return len(s.rules) }
