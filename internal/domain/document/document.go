package document

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum chunk content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is one indexed chunk of a source document (immutable value object).
// A source document is split during ingestion; every chunk keeps the same
// source ID and its own split index.
type Document struct {
	id       string
	sourceID string
	splitID  int
	content  string
	meta     map[string]string
	vector   []float32
}

// New validates and creates a Document chunk.
// ID and SourceID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Content: non-empty, max 160KB.
func New(id, sourceID string, splitID int, content string, meta map[string]string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("chunk ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("chunk ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("chunk ID must be alphanumeric with underscores and hyphens")
	}
	if sourceID == "" {
		return Document{}, fmt.Errorf("source ID is required")
	}
	if !idRegex.MatchString(sourceID) {
		return Document{}, fmt.Errorf("source ID must be alphanumeric with underscores and hyphens")
	}
	if splitID < 0 {
		return Document{}, fmt.Errorf("split ID must not be negative")
	}
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}

	return Document{
		id:       id,
		sourceID: sourceID,
		splitID:  splitID,
		content:  content,
		meta:     cloneMeta(meta),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, sourceID string, splitID int, content string, meta map[string]string, vector []float32) Document {
	return Document{id: id, sourceID: sourceID, splitID: splitID, content: content, meta: meta, vector: vector}
}

// ID returns the chunk identifier.
func (d *Document) ID() string { return d.id }

// SourceID returns the identifier of the original source document.
func (d *Document) SourceID() string { return d.sourceID }

// SplitID returns the chunk position within the source document.
func (d *Document) SplitID() int { return d.splitID }

// Content returns the chunk text content.
func (d *Document) Content() string { return d.content }

// Meta returns the chunk metadata fields.
func (d *Document) Meta() map[string]string { return d.meta }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32) Document {
	return Document{
		id: d.id, sourceID: d.sourceID, splitID: d.splitID,
		content: d.content, meta: d.meta, vector: v,
	}
}

// WithMeta returns a copy with the metadata merged over the existing fields.
func (d *Document) WithMeta(meta map[string]string) Document {
	merged := cloneMeta(d.meta)
	if merged == nil && len(meta) > 0 {
		merged = make(map[string]string, len(meta))
	}
	for k, v := range meta {
		merged[k] = v
	}
	return Document{
		id: d.id, sourceID: d.sourceID, splitID: d.splitID,
		content: d.content, meta: merged, vector: d.vector,
	}
}

func cloneMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
