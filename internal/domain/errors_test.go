package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestClassificationErrorMatchesSentinel(t *testing.T) {
	err := NewClassificationError("broken query", errors.New("scorer fault"))

	if !errors.Is(err, ErrClassification) {
		t.Error("expected errors.Is match on ErrClassification")
	}
}

func TestClassificationErrorKeepsCauseInChain(t *testing.T) {
	cause := errors.New("scorer fault")
	err := NewClassificationError("broken query", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is match on the wrapped cause")
	}
	if !strings.Contains(err.Error(), "broken query") {
		t.Errorf("message should carry the query, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "scorer fault") {
		t.Errorf("message should carry the cause, got %q", err.Error())
	}
}

func TestClassificationErrorNilCause(t *testing.T) {
	err := NewClassificationError("q", nil)

	if !errors.Is(err, ErrClassification) {
		t.Error("expected errors.Is match on ErrClassification")
	}
}
