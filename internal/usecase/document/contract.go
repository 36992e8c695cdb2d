package document

import (
	"context"

	"github.com/calyptra/mona/internal/domain"
	domdoc "github.com/calyptra/mona/internal/domain/document"
)

// Repository defines the storage contract for sources and their chunks.
type Repository interface {
	ReplaceChunks(ctx context.Context, src domdoc.Source, chunks []domdoc.Document) error
	ChunksBySource(ctx context.Context, sourceID string) ([]domdoc.Document, error)
	GetSource(ctx context.Context, sourceID string) (domdoc.Source, error)
	ListSources(ctx context.Context, offset, limit int) ([]domdoc.Source, int64, error)
	UpdateMeta(ctx context.Context, sourceID string, meta map[string]string) error
	DeleteBySource(ctx context.Context, sourceID string) (int, error)
}

// Embedder vectorizes chunk contents in batches during ingestion.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
