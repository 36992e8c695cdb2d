package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidInput signals a malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig signals an invalid configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals an LLM provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrClassification signals an internal classification fault.
	ErrClassification = errors.New("classification failed")
)

// ClassificationError wraps ErrClassification with the offending query and cause.
type ClassificationError struct {
	Query string
	Cause error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s for query %q: %v", ErrClassification.Error(), e.Query, e.Cause)
}

func (e *ClassificationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrClassification}
	}
	return []error{ErrClassification, e.Cause}
}

// NewClassificationError creates a classification failure for the given query.
func NewClassificationError(query string, cause error) error {
	return &ClassificationError{Query: query, Cause: cause}
}
