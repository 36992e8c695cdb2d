package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/calyptra/mona/internal/db"
)

// HSet writes all fields of a single hash.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]any) error {
	if len(fields) == 0 {
		return db.NewError(db.OpHSet, fmt.Errorf("no fields for key %q", key))
	}

	cmd := s.client.B().Hset().Key(key).FieldValue()
	for f, v := range fields {
		cmd = cmd.FieldValue(f, toRedisString(v))
	}
	if err := s.client.Do(ctx, cmd.Build()).Error(); err != nil {
		return db.NewError(db.OpHSet, err)
	}
	return nil
}

// HSetMulti writes several hashes in one pipelined round trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, len(items))
	for _, item := range items {
		if len(item.Fields) == 0 {
			return db.NewError(db.OpHSet, fmt.Errorf("no fields for key %q", item.Key))
		}
		cmd := s.client.B().Hset().Key(item.Key).FieldValue()
		for f, v := range item.Fields {
			cmd = cmd.FieldValue(f, toRedisString(v))
		}
		cmds = append(cmds, cmd.Build())
	}

	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return db.NewError(db.OpHSet, err)
		}
	}
	return nil
}

// HGetAll reads a hash. Returns db.ErrKeyNotFound for a missing key.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.client.B().Hgetall().Key(key).Build()
	fields, err := s.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, db.NewError(db.OpHGetAll, err)
	}
	if len(fields) == 0 {
		return nil, db.NewError(db.OpHGetAll, fmt.Errorf("%w: %q", db.ErrKeyNotFound, key))
	}
	return fields, nil
}

// HGetAllMulti reads several hashes in one round trip. Missing keys come
// back as nil maps, preserving input order.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make(rueidis.Commands, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, s.client.B().Hgetall().Key(key).Build())
	}

	out := make([]map[string]string, 0, len(keys))
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		fields, err := resp.AsStrMap()
		if err != nil {
			return nil, db.NewError(db.OpHGetAll, err)
		}
		if len(fields) == 0 {
			out = append(out, nil)
			continue
		}
		out = append(out, fields)
	}
	return out, nil
}

// Del removes keys and returns how many existed.
func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	cmd := s.client.B().Del().Key(keys...).Build()
	n, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, db.NewError(db.OpDel, err)
	}
	return n, nil
}

// Exists reports whether the key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.client.B().Exists().Key(key).Build()
	n, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, db.NewError(db.OpExists, err)
	}
	return n > 0, nil
}

func toRedisString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
