package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/calyptra/mona/internal/db"
)

// Get reads a string value. Returns db.ErrKeyNotFound for a missing key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	cmd := s.client.B().Get().Key(key).Build()
	v, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", db.NewError(db.OpGet, fmt.Errorf("%w: %q", db.ErrKeyNotFound, key))
		}
		return "", db.NewError(db.OpGet, err)
	}
	return v, nil
}

// Set writes a string value without expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	cmd := s.client.B().Set().Key(key).Value(value).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return db.NewError(db.OpSet, err)
	}
	return nil
}

// SetWithTTL writes a string value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(key).Value(value).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return db.NewError(db.OpSet, err)
	}
	return nil
}
