package chi

import (
	"context"

	"github.com/calyptra/mona/internal/domain"
	domdoc "github.com/calyptra/mona/internal/domain/document"
	domintent "github.com/calyptra/mona/internal/domain/intent"
)

// mockClassifier serves both the transport Classifier and the chat
// use case classifier contract.
type mockClassifier struct {
	classifyFn func(query string) (domintent.Result, error)
	rules      int
}

func (m *mockClassifier) Classify(query string) (domintent.Result, error) {
	return m.classifyFn(query)
}

func (m *mockClassifier) RuleCount() int { return m.rules }

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

type mockRetriever struct {
	searchFn func(ctx context.Context, vector []float32, k int, sourceID string) ([]domdoc.Scored, error)
}

func (m *mockRetriever) SearchChunks(
	ctx context.Context, vector []float32, k int, sourceID string,
) ([]domdoc.Scored, error) {
	return m.searchFn(ctx, vector, k, sourceID)
}

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (domain.GenerationResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	return m.generateFn(ctx, prompt)
}

type mockRepo struct {
	replaceChunksFn  func(ctx context.Context, src domdoc.Source, chunks []domdoc.Document) error
	chunksBySourceFn func(ctx context.Context, sourceID string) ([]domdoc.Document, error)
	getSourceFn      func(ctx context.Context, sourceID string) (domdoc.Source, error)
	listSourcesFn    func(ctx context.Context, offset, limit int) ([]domdoc.Source, int64, error)
	updateMetaFn     func(ctx context.Context, sourceID string, meta map[string]string) error
	deleteBySourceFn func(ctx context.Context, sourceID string) (int, error)
}

func (m *mockRepo) ReplaceChunks(ctx context.Context, src domdoc.Source, chunks []domdoc.Document) error {
	return m.replaceChunksFn(ctx, src, chunks)
}

func (m *mockRepo) ChunksBySource(ctx context.Context, sourceID string) ([]domdoc.Document, error) {
	return m.chunksBySourceFn(ctx, sourceID)
}

func (m *mockRepo) GetSource(ctx context.Context, sourceID string) (domdoc.Source, error) {
	return m.getSourceFn(ctx, sourceID)
}

func (m *mockRepo) ListSources(ctx context.Context, offset, limit int) ([]domdoc.Source, int64, error) {
	return m.listSourcesFn(ctx, offset, limit)
}

func (m *mockRepo) UpdateMeta(ctx context.Context, sourceID string, meta map[string]string) error {
	return m.updateMetaFn(ctx, sourceID, meta)
}

func (m *mockRepo) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	return m.deleteBySourceFn(ctx, sourceID)
}

type mockBatchEmbedder struct {
	batchFn func(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn == nil {
		return nil
	}
	return m.pingFn(ctx)
}
