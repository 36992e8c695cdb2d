package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/calyptra/mona/internal/db"
)

// CreateIndex issues FT.CREATE for an index over HASH keys.
// Returns db.ErrIndexExists if the index is already there.
func (s *Store) CreateIndex(ctx context.Context, def db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return db.NewError(db.OpCreateIndex, err)
	}

	args := []string{
		def.Name,
		"ON", "HASH",
		"PREFIX", "1", def.Prefix,
		"SCHEMA",
	}
	for _, f := range def.Fields {
		args = append(args, fieldSchemaArgs(f)...)
	}

	cmd := s.client.B().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if redisErrContains(err, "index already exists") {
			return db.NewError(db.OpCreateIndex, fmt.Errorf("%w: %q", db.ErrIndexExists, def.Name))
		}
		return db.NewError(db.OpCreateIndex, err)
	}
	return nil
}

// DropIndex issues FT.DROPINDEX DD, removing the index together with the
// indexed hashes. Returns db.ErrIndexNotFound for an unknown index.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	if !db.IsValidIdentifier(name) {
		return db.NewError(db.OpDropIndex, fmt.Errorf("invalid index name %q", name))
	}

	cmd := s.client.B().Arbitrary("FT.DROPINDEX").Args(name, "DD").Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if redisErrContains(err, "unknown index") || redisErrContains(err, "no such index") {
			return db.NewError(db.OpDropIndex, fmt.Errorf("%w: %q", db.ErrIndexNotFound, name))
		}
		return db.NewError(db.OpDropIndex, err)
	}
	return nil
}

// IndexExists probes the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	if !db.IsValidIdentifier(name) {
		return false, db.NewError(db.OpIndexInfo, fmt.Errorf("invalid index name %q", name))
	}

	cmd := s.client.B().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if redisErrContains(err, "unknown index") || redisErrContains(err, "no such index") {
			return false, nil
		}
		return false, db.NewError(db.OpIndexInfo, err)
	}
	return true, nil
}

func fieldSchemaArgs(f db.IndexField) []string {
	switch f.Type {
	case db.FieldVector:
		v := f.Vector
		return []string{
			f.Name, "VECTOR", "HNSW", "10",
			"TYPE", "FLOAT32",
			"DIM", strconv.Itoa(v.Dim),
			"DISTANCE_METRIC", v.DistanceMetric,
			"M", strconv.Itoa(v.M),
			"EF_CONSTRUCTION", strconv.Itoa(v.EFConstruction),
		}
	case db.FieldTag:
		return []string{f.Name, "TAG"}
	case db.FieldNumeric:
		return []string{f.Name, "NUMERIC", "SORTABLE"}
	default:
		return []string{f.Name, "TEXT"}
	}
}
