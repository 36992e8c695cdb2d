// Package document implements source ingestion and management: clean,
// split, embed and persist incoming text, and serve the stored chunks.
package document

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/calyptra/mona/internal/domain"
	domdoc "github.com/calyptra/mona/internal/domain/document"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service handles the source document lifecycle.
type Service struct {
	repo       Repository
	embed      Embedder
	splitWords int
	overlap    int
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a document service. splitWords/overlap control chunking.
func New(repo Repository, embed Embedder, splitWords, overlap int, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		embed:      embed,
		splitWords: splitWords,
		overlap:    overlap,
		logger:     logger,
		now:        time.Now,
	}
}

// Ingest cleans and splits text, embeds every chunk and replaces whatever
// was stored for the source before. Returns the stored source record.
func (s *Service) Ingest(ctx context.Context, sourceID, name, text string, meta map[string]string) (domdoc.Source, error) {
	cleaned := cleanText(text)
	if cleaned == "" {
		return domdoc.Source{}, fmt.Errorf("%w: document text is empty", domain.ErrInvalidInput)
	}

	parts := splitWords(cleaned, s.splitWords, s.overlap)

	chunks := make([]domdoc.Document, 0, len(parts))
	for i, part := range parts {
		chunk, err := domdoc.New(fmt.Sprintf("%s_%d", sourceID, i), sourceID, i, part, meta)
		if err != nil {
			return domdoc.Source{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		chunks = append(chunks, chunk)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content()
	}
	batch, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return domdoc.Source{}, fmt.Errorf("embed chunks of %s: %w", sourceID, err)
	}
	if len(batch.Embeddings) != len(chunks) {
		return domdoc.Source{}, fmt.Errorf("embed chunks of %s: got %d vectors for %d chunks",
			sourceID, len(batch.Embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i] = chunks[i].WithVector(batch.Embeddings[i])
	}

	src := domdoc.Source{
		SourceID:   sourceID,
		Name:       name,
		ChunkCount: len(chunks),
		Meta:       meta,
		IngestedAt: s.now().UTC(),
	}
	if err := s.repo.ReplaceChunks(ctx, src, chunks); err != nil {
		return domdoc.Source{}, fmt.Errorf("store source %s: %w", sourceID, err)
	}

	s.logger.Info("Source ingested",
		zap.String("source_id", sourceID),
		zap.Int("chunks", len(chunks)),
		zap.Int("embedding_tokens", batch.TotalTokens))
	return src, nil
}

// List pages through stored sources.
func (s *Service) List(ctx context.Context, offset, limit int) ([]domdoc.Source, int64, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListSources(ctx, offset, limit)
}

// Get returns one source record.
func (s *Service) Get(ctx context.Context, sourceID string) (domdoc.Source, error) {
	return s.repo.GetSource(ctx, sourceID)
}

// GetChunks returns all chunks of a source in split order.
func (s *Service) GetChunks(ctx context.Context, sourceID string) ([]domdoc.Document, error) {
	return s.repo.ChunksBySource(ctx, sourceID)
}

// UpdateMetadata merges meta into the source and all of its chunks.
func (s *Service) UpdateMetadata(ctx context.Context, sourceID string, meta map[string]string) error {
	if len(meta) == 0 {
		return fmt.Errorf("%w: empty metadata update", domain.ErrInvalidInput)
	}
	for k := range meta {
		if k == "" {
			return fmt.Errorf("%w: empty metadata key", domain.ErrInvalidInput)
		}
	}
	return s.repo.UpdateMeta(ctx, sourceID, meta)
}

// Delete removes a source and its chunks, returning the chunk count.
func (s *Service) Delete(ctx context.Context, sourceID string) (int, error) {
	n, err := s.repo.DeleteBySource(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Source deleted",
		zap.String("source_id", sourceID),
		zap.Int("chunks", n))
	return n, nil
}
