package intent

import "math"

// estimateConfidence combines the two category totals into a bounded [0,1]
// value: separation measures how decisively one side won, strength how
// large the winning score is relative to the expected maximum.
func (s *Service) estimateConfidence(docScore, convScore float64) float64 {
	total := docScore + convScore
	if total == 0 {
		return 0.5
	}

	separation := math.Abs(docScore-convScore) / total
	strength := math.Min(math.Max(docScore, convScore)/s.cfg.MaxExpectedScore, 1.0)

	confidence := separation*s.cfg.SeparationWeight + strength*s.cfg.StrengthWeight
	return math.Min(confidence, 1.0)
}
