package intent

// Scores accumulates per-category weights during a single classification.
type Scores struct {
	Doc  float64
	Conv float64
}

// MatchedRule is a diagnostic entry for one rule that matched the query.
type MatchedRule struct {
	Pattern     string  `json:"pattern"`
	Kind        string  `json:"type"`
	Weight      float64 `json:"weight"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// PatternAnalysis holds the rule-matching diagnostics of one classification.
type PatternAnalysis struct {
	MatchedRules []MatchedRule     `json:"matched_rules"`
	TotalMatches int               `json:"total_matches"`
	RegexErrors  map[string]string `json:"regex_errors,omitempty"`
}

// FeatureAnalysis holds the feature-engineering diagnostics of one classification.
type FeatureAnalysis struct {
	TFIDFDoc           float64  `json:"tfidf_doc"`
	TFIDFConv          float64  `json:"tfidf_conv"`
	BigramsDoc         []string `json:"bigrams_doc"`
	BigramsConv        []string `json:"bigrams_conv"`
	HasWHWords         bool     `json:"has_wh_words"`
	QueryLength        int      `json:"query_length"`
	HasQuestionMark    bool     `json:"has_question_mark"`
	PunctuationDensity float64  `json:"punctuation_density"`
}

// ProcessingMeta holds per-call metadata for diagnostics.
type ProcessingMeta struct {
	OriginalQuery       string   `json:"original_query"`
	ProcessedQuery      string   `json:"processed_query"`
	ExtractedKeywords   []string `json:"extracted_keywords"`
	TotalRulesEvaluated int      `json:"total_rules_evaluated"`
}

// Diagnostics aggregates every intermediate signal of one classification.
type Diagnostics struct {
	DocumentFinalScore       float64         `json:"document_final_score"`
	ConversationalFinalScore float64         `json:"conversational_final_score"`
	Confidence               float64         `json:"confidence"`
	Patterns                 PatternAnalysis `json:"pattern_analysis"`
	Features                 FeatureAnalysis `json:"feature_analysis"`
	Meta                     ProcessingMeta  `json:"processing_metadata"`
}

// Result is the outcome of classifying one query.
type Result struct {
	NeedsRetrieval   bool        `json:"needs_retrieval"`
	Classification   Intent      `json:"classification"`
	Confidence       float64     `json:"confidence"`
	FeatureScores    Diagnostics `json:"feature_scores"`
	ProcessingTimeMS float64     `json:"processing_time_ms"`
}
