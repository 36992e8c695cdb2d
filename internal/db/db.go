// Package db defines the storage contracts the chunk repository and the
// embedding cache are built on. Implementations live in subpackages
// (currently Redis via rueidis).
package db

import (
	"context"
	"time"
)

// Pinger checks connectivity to the underlying store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is a single hash write in a batched HSetMulti call.
type HashSetItem struct {
	Key    string
	Fields map[string]any
}

// HashStore persists document chunks as hashes.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]any) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore is a plain string key-value surface, used by the embedding cache.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

// IndexManager manages full-text/vector indexes over stored hashes.
type IndexManager interface {
	CreateIndex(ctx context.Context, def IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs queries against an index.
type Searcher interface {
	SearchKNN(ctx context.Context, q KNNQuery) (SearchResult, error)
	SearchList(ctx context.Context, q ListQuery) (SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int64, error)
}

// Store aggregates everything the application needs from the database.
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher

	// WaitForReady blocks until the store answers Ping or the context is done.
	WaitForReady(ctx context.Context, interval time.Duration) error
	Close()
}
