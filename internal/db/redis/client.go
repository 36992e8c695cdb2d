// Package redis implements db.Store on top of Redis Stack using rueidis.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/calyptra/mona/internal/db"
)

// Config holds Redis connection settings.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store is the rueidis-backed db.Store implementation.
type Store struct {
	client rueidis.Client
}

var _ db.Store = (*Store)(nil)

// NewStore connects to Redis and verifies the connection with a ping.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
		// RediSearch replies are parsed as flat RESP2 arrays.
		AlwaysRESP2: true,
	})
	if err != nil {
		return nil, db.NewError(db.OpPing, fmt.Errorf("%w: %v", db.ErrConnection, err))
	}

	s := &Store{client: client}
	if err := s.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreForTest wraps an existing rueidis client, for tests with mocks.
func NewStoreForTest(client rueidis.Client) *Store {
	return &Store{client: client}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return db.NewError(db.OpPing, fmt.Errorf("%w: %v", db.ErrConnection, err))
	}
	return nil
}

// WaitForReady polls Ping until it succeeds or ctx is done.
func (s *Store) WaitForReady(ctx context.Context, interval time.Duration) error {
	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return db.NewError(db.OpPing, fmt.Errorf("%w: %v", db.ErrConnection, ctx.Err()))
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close releases the underlying client.
func (s *Store) Close() {
	s.client.Close()
}

// redisErrContains reports whether err carries a Redis error reply whose
// text contains sub (case-insensitive). Used to map server replies like
// "Unknown index name" onto db sentinels.
func redisErrContains(err error, sub string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(sub))
}
