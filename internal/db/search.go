package db

import "fmt"

// KNNQuery is a vector similarity search over an index.
type KNNQuery struct {
	Index  string
	Vector []float32
	K      int
	// Tags restricts the search to hashes whose TAG fields match the given
	// values exactly. An empty map means no filtering.
	Tags map[string]string
	// Return limits the fields fetched per hit; empty returns all fields.
	Return []string
}

// Validate checks the query shape before it is sent to the store.
func (q KNNQuery) Validate() error {
	if !IsValidIdentifier(q.Index) {
		return fmt.Errorf("%w: invalid index name %q", ErrInvalidQuery, q.Index)
	}
	if len(q.Vector) == 0 {
		return fmt.Errorf("%w: empty query vector", ErrInvalidQuery)
	}
	if q.K <= 0 {
		return fmt.Errorf("%w: k must be positive", ErrInvalidQuery)
	}
	for name := range q.Tags {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("%w: invalid tag field %q", ErrInvalidQuery, name)
		}
	}
	return nil
}

// ListQuery pages through index entries matching a tag filter, newest-agnostic.
type ListQuery struct {
	Index  string
	Tags   map[string]string
	Offset int
	Limit  int
	Return []string
	SortBy string
}

// Validate checks the query shape before it is sent to the store.
func (q ListQuery) Validate() error {
	if !IsValidIdentifier(q.Index) {
		return fmt.Errorf("%w: invalid index name %q", ErrInvalidQuery, q.Index)
	}
	if q.Offset < 0 {
		return fmt.Errorf("%w: negative offset", ErrInvalidQuery)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidQuery)
	}
	for name := range q.Tags {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("%w: invalid tag field %q", ErrInvalidQuery, name)
		}
	}
	if q.SortBy != "" && !IsValidIdentifier(q.SortBy) {
		return fmt.Errorf("%w: invalid sort field %q", ErrInvalidQuery, q.SortBy)
	}
	return nil
}

// SearchEntry is a single hit: the hash key, its fields and, for KNN
// queries, a similarity score in [0, 1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult carries the total match count and the returned page.
type SearchResult struct {
	Total   int64
	Entries []SearchEntry
}
