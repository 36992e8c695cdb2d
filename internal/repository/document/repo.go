// Package document persists source documents and their chunks in Redis:
// one hash per chunk, one hash per source, and a vector index over the
// chunk hashes for retrieval.
package document

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/calyptra/mona/internal/db"
	"github.com/calyptra/mona/internal/domain"
	domdoc "github.com/calyptra/mona/internal/domain/document"
)

// listPageSize bounds one FT.SEARCH page when walking all chunks of a source.
const listPageSize = 500

// store is the consumer interface for chunk persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]any) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def db.IndexDefinition) error
	SearchKNN(ctx context.Context, q db.KNNQuery) (db.SearchResult, error)
	SearchList(ctx context.Context, q db.ListQuery) (db.SearchResult, error)
}

// Repo implements the chunk repository over a db store.
type Repo struct {
	store       store
	keyPrefix   string
	chunkIndex  string
	sourceIndex string
}

// New creates the repository. keyPrefix namespaces all keys (e.g. "mona:"),
// chunkIndex names the vector index over chunk hashes.
func New(s store, keyPrefix, chunkIndex string) *Repo {
	return &Repo{
		store:       s,
		keyPrefix:   keyPrefix,
		chunkIndex:  chunkIndex,
		sourceIndex: chunkIndex + "-sources",
	}
}

// EnsureIndexes creates the chunk and source indexes if they are missing.
// vectorDim must match the embedding provider's output dimension.
func (r *Repo) EnsureIndexes(ctx context.Context, vectorDim, hnswM, hnswEF int) error {
	chunkDef := db.IndexDefinition{
		Name:   r.chunkIndex,
		Prefix: r.chunkKeyPrefix(),
		Fields: []db.IndexField{
			{Name: "source_id", Type: db.FieldTag},
			{Name: "split_id", Type: db.FieldNumeric},
			{Name: "content", Type: db.FieldText},
			{Name: "vector", Type: db.FieldVector, Vector: &db.VectorOptions{
				Dim:            vectorDim,
				DistanceMetric: "COSINE",
				M:              hnswM,
				EFConstruction: hnswEF,
			}},
		},
	}
	sourceDef := db.IndexDefinition{
		Name:   r.sourceIndex,
		Prefix: r.sourceKeyPrefix(),
		Fields: []db.IndexField{
			{Name: "source_id", Type: db.FieldTag},
			{Name: "name", Type: db.FieldText},
			{Name: "ingested_at", Type: db.FieldNumeric},
		},
	}

	for _, def := range []db.IndexDefinition{chunkDef, sourceDef} {
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}

// ReplaceChunks removes all existing chunks of the source and writes the
// given ones, then upserts the source record. Re-ingesting a source never
// leaves stale chunks behind.
func (r *Repo) ReplaceChunks(ctx context.Context, src domdoc.Source, chunks []domdoc.Document) error {
	oldKeys, err := r.chunkKeys(ctx, src.SourceID)
	if err != nil {
		return err
	}
	if len(oldKeys) > 0 {
		if _, err := r.store.Del(ctx, oldKeys...); err != nil {
			return fmt.Errorf("delete stale chunks of %s: %w", src.SourceID, err)
		}
	}

	items := make([]db.HashSetItem, 0, len(chunks))
	for i := range chunks {
		items = append(items, db.HashSetItem{
			Key:    r.chunkKey(chunks[i].ID()),
			Fields: buildChunkFields(&chunks[i]),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write chunks of %s: %w", src.SourceID, err)
	}

	if err := r.store.HSet(ctx, r.sourceKey(src.SourceID), buildSourceFields(src)); err != nil {
		return fmt.Errorf("write source %s: %w", src.SourceID, err)
	}
	return nil
}

// ChunksBySource returns all chunks of a source ordered by split ID.
func (r *Repo) ChunksBySource(ctx context.Context, sourceID string) ([]domdoc.Document, error) {
	keys, err := r.chunkKeys(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, domain.ErrDocumentNotFound
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("read chunks of %s: %w", sourceID, err)
	}

	chunks := make([]domdoc.Document, 0, len(maps))
	for i, fields := range maps {
		if fields == nil {
			continue
		}
		chunks = append(chunks, parseChunkFields(r.chunkID(keys[i]), fields))
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].SplitID() < chunks[j].SplitID() })
	return chunks, nil
}

// GetSource returns the source record.
func (r *Repo) GetSource(ctx context.Context, sourceID string) (domdoc.Source, error) {
	fields, err := r.store.HGetAll(ctx, r.sourceKey(sourceID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Source{}, domain.ErrDocumentNotFound
		}
		return domdoc.Source{}, fmt.Errorf("read source %s: %w", sourceID, err)
	}
	return parseSourceFields(fields), nil
}

// ListSources pages through source records ordered by ingestion time.
// Returns the page and the total source count.
func (r *Repo) ListSources(ctx context.Context, offset, limit int) ([]domdoc.Source, int64, error) {
	res, err := r.store.SearchList(ctx, db.ListQuery{
		Index:  r.sourceIndex,
		Offset: offset,
		Limit:  limit,
		SortBy: "ingested_at",
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("list sources: %w", err)
	}

	sources := make([]domdoc.Source, 0, len(res.Entries))
	for _, entry := range res.Entries {
		sources = append(sources, parseSourceFields(entry.Fields))
	}
	return sources, res.Total, nil
}

// UpdateMeta merges meta into the source record and every chunk of the
// source. Nothing is removed; incoming keys win over existing ones.
func (r *Repo) UpdateMeta(ctx context.Context, sourceID string, meta map[string]string) error {
	src, err := r.GetSource(ctx, sourceID)
	if err != nil {
		return err
	}
	merged := mergeMeta(src.Meta, meta)
	if err := r.store.HSet(ctx, r.sourceKey(sourceID), map[string]any{
		"meta": metaToJSON(merged),
	}); err != nil {
		return fmt.Errorf("update source meta %s: %w", sourceID, err)
	}

	keys, err := r.chunkKeys(ctx, sourceID)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return fmt.Errorf("read chunks of %s: %w", sourceID, err)
	}
	items := make([]db.HashSetItem, 0, len(keys))
	for i, fields := range maps {
		if fields == nil {
			continue
		}
		items = append(items, db.HashSetItem{
			Key: keys[i],
			Fields: map[string]any{
				"meta": metaToJSON(mergeMeta(metaFromJSON(fields["meta"]), meta)),
			},
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("update chunk meta of %s: %w", sourceID, err)
	}
	return nil
}

// DeleteBySource removes the source record and all its chunks.
// Returns the number of chunks removed.
func (r *Repo) DeleteBySource(ctx context.Context, sourceID string) (int, error) {
	exists, err := r.store.Exists(ctx, r.sourceKey(sourceID))
	if err != nil {
		return 0, fmt.Errorf("check source %s: %w", sourceID, err)
	}
	if !exists {
		return 0, domain.ErrDocumentNotFound
	}

	keys, err := r.chunkKeys(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	if _, err := r.store.Del(ctx, append(keys, r.sourceKey(sourceID))...); err != nil {
		return 0, fmt.Errorf("delete source %s: %w", sourceID, err)
	}
	return len(keys), nil
}

// SearchChunks runs a KNN search over chunk vectors. sourceID narrows the
// search to one source when non-empty.
func (r *Repo) SearchChunks(ctx context.Context, vector []float32, k int, sourceID string) ([]domdoc.Scored, error) {
	q := db.KNNQuery{
		Index:  r.chunkIndex,
		Vector: vector,
		K:      k,
	}
	if sourceID != "" {
		q.Tags = map[string]string{"source_id": sourceID}
	}

	res, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("knn search: %w", err)
	}

	scored := make([]domdoc.Scored, 0, len(res.Entries))
	for _, entry := range res.Entries {
		scored = append(scored, domdoc.Scored{
			Document: parseChunkFields(r.chunkID(entry.Key), entry.Fields),
			Score:    entry.Score,
		})
	}
	return scored, nil
}

// chunkKeys collects all chunk hash keys of a source, paging through the
// chunk index.
func (r *Repo) chunkKeys(ctx context.Context, sourceID string) ([]string, error) {
	var keys []string
	offset := 0
	for {
		res, err := r.store.SearchList(ctx, db.ListQuery{
			Index:  r.chunkIndex,
			Tags:   map[string]string{"source_id": sourceID},
			Offset: offset,
			Limit:  listPageSize,
			Return: []string{"split_id"},
			SortBy: "split_id",
		})
		if err != nil {
			if errors.Is(err, db.ErrIndexNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("list chunks of %s: %w", sourceID, err)
		}
		for _, entry := range res.Entries {
			keys = append(keys, entry.Key)
		}
		offset += len(res.Entries)
		if len(res.Entries) == 0 || int64(offset) >= res.Total {
			return keys, nil
		}
	}
}

func (r *Repo) chunkKeyPrefix() string  { return r.keyPrefix + "chunk:" }
func (r *Repo) sourceKeyPrefix() string { return r.keyPrefix + "source:" }

func (r *Repo) chunkKey(id string) string        { return r.chunkKeyPrefix() + id }
func (r *Repo) sourceKey(sourceID string) string { return r.sourceKeyPrefix() + sourceID }

// chunkID strips the key prefix back off a stored chunk key.
func (r *Repo) chunkID(key string) string {
	prefix := r.chunkKeyPrefix()
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return key
}
