package intent

import (
	"strings"

	"go.uber.org/zap"

	domintent "github.com/calyptra/mona/internal/domain/intent"
	"github.com/calyptra/mona/internal/metrics"
)

// scoreRules evaluates every rule against the preprocessed query and
// aggregates matched weights per category. A rule whose regex failed to
// compile is recorded under regex_error_<pattern> and skipped; scoring
// always completes.
func (s *Service) scoreRules(processed string) (domintent.Scores, domintent.PatternAnalysis) {
	var scores domintent.Scores
	analysis := domintent.PatternAnalysis{
		MatchedRules: []domintent.MatchedRule{},
	}

	for _, cr := range s.rules {
		if cr.rule.Kind == domintent.Regex && cr.compileErr != nil {
			if analysis.RegexErrors == nil {
				analysis.RegexErrors = make(map[string]string)
			}
			analysis.RegexErrors["regex_error_"+cr.rule.Pattern] = cr.compileErr.Error()
			metrics.ClassifierRegexFaultsTotal.Inc()
			s.logger.Warn("skipping uncompilable classification rule",
				zap.String("pattern", cr.rule.Pattern),
				zap.Error(cr.compileErr),
			)
			continue
		}

		var matched bool
		switch cr.rule.Kind {
		case domintent.Keyword, domintent.Phrase:
			matched = strings.Contains(processed, cr.rule.Pattern)
		case domintent.Regex:
			matched = cr.re.MatchString(processed)
		}
		if !matched {
			continue
		}

		if cr.rule.Category == domintent.DocumentRetrieval {
			scores.Doc += cr.rule.Weight
		} else {
			scores.Conv += cr.rule.Weight
		}

		analysis.MatchedRules = append(analysis.MatchedRules, domintent.MatchedRule{
			Pattern:     cr.rule.Pattern,
			Kind:        string(cr.rule.Kind),
			Weight:      cr.rule.Weight,
			Category:    string(cr.rule.Category),
			Description: cr.rule.Description,
		})
	}

	analysis.TotalMatches = len(analysis.MatchedRules)
	return scores, analysis
}
