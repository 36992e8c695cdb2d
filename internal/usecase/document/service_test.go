package document

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/calyptra/mona/internal/domain"
	domdoc "github.com/calyptra/mona/internal/domain/document"
)

type mockRepo struct {
	replaceFn    func(ctx context.Context, src domdoc.Source, chunks []domdoc.Document) error
	chunksFn     func(ctx context.Context, sourceID string) ([]domdoc.Document, error)
	getSourceFn  func(ctx context.Context, sourceID string) (domdoc.Source, error)
	listFn       func(ctx context.Context, offset, limit int) ([]domdoc.Source, int64, error)
	updateMetaFn func(ctx context.Context, sourceID string, meta map[string]string) error
	deleteFn     func(ctx context.Context, sourceID string) (int, error)
}

func (m *mockRepo) ReplaceChunks(ctx context.Context, src domdoc.Source, chunks []domdoc.Document) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, src, chunks)
	}
	return nil
}

func (m *mockRepo) ChunksBySource(ctx context.Context, sourceID string) ([]domdoc.Document, error) {
	if m.chunksFn != nil {
		return m.chunksFn(ctx, sourceID)
	}
	return nil, nil
}

func (m *mockRepo) GetSource(ctx context.Context, sourceID string) (domdoc.Source, error) {
	if m.getSourceFn != nil {
		return m.getSourceFn(ctx, sourceID)
	}
	return domdoc.Source{}, nil
}

func (m *mockRepo) ListSources(ctx context.Context, offset, limit int) ([]domdoc.Source, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockRepo) UpdateMeta(ctx context.Context, sourceID string, meta map[string]string) error {
	if m.updateMetaFn != nil {
		return m.updateMetaFn(ctx, sourceID, meta)
	}
	return nil
}

func (m *mockRepo) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, sourceID)
	}
	return 0, nil
}

type mockBatchEmbedder struct {
	err      error
	short    bool
	gotTexts []string
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.gotTexts = texts
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	n := len(texts)
	if m.short {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = []float32{float32(i), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 10 * len(texts)}, nil
}

func newTestService(repo *mockRepo, embed *mockBatchEmbedder) *Service {
	s := New(repo, embed, 5, 1, zap.NewNop())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s
}

func TestIngest_SplitsEmbedsAndStores(t *testing.T) {
	var gotSrc domdoc.Source
	var gotChunks []domdoc.Document
	repo := &mockRepo{
		replaceFn: func(_ context.Context, src domdoc.Source, chunks []domdoc.Document) error {
			gotSrc = src
			gotChunks = chunks
			return nil
		},
	}
	embed := &mockBatchEmbedder{}

	// 12 words, window 5, overlap 1 → steps of 4 → chunks at 0,4,8.
	text := "one two three four five six seven eight nine ten eleven twelve"
	src, err := newTestService(repo, embed).Ingest(context.Background(), "guide", "guide.txt", text, map[string]string{"lang": "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.ChunkCount != 3 || gotSrc.ChunkCount != 3 {
		t.Fatalf("want 3 chunks, got %d", src.ChunkCount)
	}
	if len(gotChunks) != 3 {
		t.Fatalf("want 3 stored chunks, got %d", len(gotChunks))
	}
	if gotChunks[0].ID() != "guide_0" || gotChunks[0].SplitID() != 0 {
		t.Errorf("unexpected first chunk: %s/%d", gotChunks[0].ID(), gotChunks[0].SplitID())
	}
	if gotChunks[1].Content() != "five six seven eight nine" {
		t.Errorf("overlap window wrong: %q", gotChunks[1].Content())
	}
	if gotChunks[2].Vector() == nil {
		t.Error("chunks must carry embeddings")
	}
	if gotChunks[0].Meta()["lang"] != "en" {
		t.Error("meta not propagated to chunks")
	}
	if len(embed.gotTexts) != 3 {
		t.Errorf("want 3 texts embedded, got %d", len(embed.gotTexts))
	}
	if !src.IngestedAt.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("unexpected timestamp: %v", src.IngestedAt)
	}
}

func TestIngest_CleansBeforeSplitting(t *testing.T) {
	var gotChunks []domdoc.Document
	repo := &mockRepo{
		replaceFn: func(_ context.Context, _ domdoc.Source, chunks []domdoc.Document) error {
			gotChunks = chunks
			return nil
		},
	}

	text := "hello\r\n\r\n\r\n\r\nworld   with\ttabs  "
	_, err := newTestService(repo, &mockBatchEmbedder{}).Ingest(context.Background(), "n", "n", text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotChunks) != 1 {
		t.Fatalf("want 1 chunk, got %d", len(gotChunks))
	}
	if strings.Contains(gotChunks[0].Content(), "\t") || strings.Contains(gotChunks[0].Content(), "  ") {
		t.Errorf("text not cleaned: %q", gotChunks[0].Content())
	}
}

func TestIngest_EmptyText(t *testing.T) {
	_, err := newTestService(&mockRepo{}, &mockBatchEmbedder{}).
		Ingest(context.Background(), "empty", "empty", "   \n\n  ", nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestIngest_BadSourceID(t *testing.T) {
	_, err := newTestService(&mockRepo{}, &mockBatchEmbedder{}).
		Ingest(context.Background(), "bad id!", "n", "some text", nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestIngest_EmbedderError(t *testing.T) {
	embed := &mockBatchEmbedder{err: domain.ErrEmbeddingProviderError}
	_, err := newTestService(&mockRepo{}, embed).
		Ingest(context.Background(), "guide", "n", "some text", nil)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("want provider error, got %v", err)
	}
}

func TestIngest_VectorCountMismatch(t *testing.T) {
	embed := &mockBatchEmbedder{short: true}
	_, err := newTestService(&mockRepo{}, embed).
		Ingest(context.Background(), "guide", "n", "some text", nil)
	if err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestList_LimitDefaults(t *testing.T) {
	var gotOffset, gotLimit int
	repo := &mockRepo{
		listFn: func(_ context.Context, offset, limit int) ([]domdoc.Source, int64, error) {
			gotOffset, gotLimit = offset, limit
			return nil, 0, nil
		},
	}
	svc := newTestService(repo, &mockBatchEmbedder{})

	if _, _, err := svc.List(context.Background(), -3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOffset != 0 || gotLimit != defaultListLimit {
		t.Errorf("defaults not applied: offset=%d limit=%d", gotOffset, gotLimit)
	}

	if _, _, err := svc.List(context.Background(), 0, 10_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != maxListLimit {
		t.Errorf("limit not capped: %d", gotLimit)
	}
}

func TestUpdateMetadata_Validation(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockBatchEmbedder{})

	if err := svc.UpdateMetadata(context.Background(), "guide", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty meta: want ErrInvalidInput, got %v", err)
	}
	if err := svc.UpdateMetadata(context.Background(), "guide", map[string]string{"": "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty key: want ErrInvalidInput, got %v", err)
	}
}

func TestDelete_NotFoundPassesThrough(t *testing.T) {
	repo := &mockRepo{
		deleteFn: func(_ context.Context, _ string) (int, error) {
			return 0, domain.ErrDocumentNotFound
		},
	}
	_, err := newTestService(repo, &mockBatchEmbedder{}).Delete(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("want ErrDocumentNotFound, got %v", err)
	}
}
