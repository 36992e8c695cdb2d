package intent

import "testing"

func TestEstimateConfidenceNeutral(t *testing.T) {
	svc := newTestService(t)

	if got := svc.estimateConfidence(0, 0); got != 0.5 {
		t.Errorf("estimateConfidence(0, 0) = %v, want exactly 0.5", got)
	}
}

func TestEstimateConfidenceSaturation(t *testing.T) {
	svc := newTestService(t)

	if got := svc.estimateConfidence(100.0, 0.0); got != 1.0 {
		t.Errorf("estimateConfidence(100, 0) = %v, want 1.0", got)
	}
}

func TestEstimateConfidenceBounds(t *testing.T) {
	svc := newTestService(t)

	inputs := []struct{ doc, conv float64 }{
		{0, 0}, {0.1, 0}, {0, 0.1}, {1, 1}, {3.2, 0.4},
		{0.4, 3.2}, {6.5, 6.5}, {50, 0.01}, {1000, 999},
	}
	for _, in := range inputs {
		got := svc.estimateConfidence(in.doc, in.conv)
		if got < 0 || got > 1 {
			t.Errorf("estimateConfidence(%v, %v) = %v outside [0,1]", in.doc, in.conv, got)
		}
	}
}

func TestEstimateConfidenceSeparationDominates(t *testing.T) {
	svc := newTestService(t)

	// Same magnitude, wider separation yields higher confidence.
	narrow := svc.estimateConfidence(2.0, 1.8)
	wide := svc.estimateConfidence(3.6, 0.2)
	if wide <= narrow {
		t.Errorf("wide separation %v should exceed narrow separation %v", wide, narrow)
	}
}
