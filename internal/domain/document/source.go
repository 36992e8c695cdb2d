package document

import "time"

// Source is the read model of an ingested source document: one row per
// uploaded file or text, aggregated over its chunks.
type Source struct {
	SourceID   string
	Name       string
	ChunkCount int
	Meta       map[string]string
	IngestedAt time.Time
}

// Scored pairs a chunk with its retrieval similarity in [0, 1].
type Scored struct {
	Document Document
	Score    float64
}
