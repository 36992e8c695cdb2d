package domain

import "context"

// Generator is the shared text generation contract between layers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// GenerationResult carries the generated reply and token usage.
type GenerationResult struct {
	Reply            string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
