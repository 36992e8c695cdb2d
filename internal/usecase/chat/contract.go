package chat

import (
	"context"

	"github.com/calyptra/mona/internal/domain"
	domdoc "github.com/calyptra/mona/internal/domain/document"
	domintent "github.com/calyptra/mona/internal/domain/intent"
)

// Classifier routes a query to retrieval or plain conversation.
type Classifier interface {
	Classify(query string) (domintent.Result, error)
}

// Retriever finds the chunks closest to a query vector.
type Retriever interface {
	SearchChunks(ctx context.Context, vector []float32, k int, sourceID string) ([]domdoc.Scored, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the reply from a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}
