package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/calyptra/mona/internal/db"
)

const scoreField = "__vector_score"

// SearchKNN runs FT.SEARCH with a KNN clause and returns hits ordered by
// ascending vector distance, scores converted to similarity in [0, 1].
func (s *Store) SearchKNN(ctx context.Context, q db.KNNQuery) (db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return db.SearchResult{}, db.NewError(db.OpSearch, err)
	}

	query := fmt.Sprintf("%s=>[KNN %d @vector $BLOB]", tagFilterExpr(q.Tags), q.K)

	args := []string{
		q.Index, query,
		"PARAMS", "2", "BLOB", rueidis.BinaryString(vectorToBytes(q.Vector)),
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
	}
	if len(q.Return) > 0 {
		// The distance field must be fetched explicitly once RETURN
		// narrows the reply.
		args = append(args, returnArgs(append(q.Return, scoreField))...)
	}
	args = append(args, "DIALECT", "2")

	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	msgs, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return db.SearchResult{}, searchError(err)
	}

	res, err := parseSearchResult(msgs)
	if err != nil {
		return db.SearchResult{}, db.NewError(db.OpSearch, err)
	}
	for i := range res.Entries {
		if raw, ok := res.Entries[i].Fields[scoreField]; ok {
			if dist, perr := strconv.ParseFloat(raw, 64); perr == nil {
				res.Entries[i].Score = 1.0 - dist
			}
			delete(res.Entries[i].Fields, scoreField)
		}
	}
	return res, nil
}

// SearchList pages through hashes matching a tag filter without scoring.
func (s *Store) SearchList(ctx context.Context, q db.ListQuery) (db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return db.SearchResult{}, db.NewError(db.OpSearch, err)
	}

	args := []string{q.Index, tagFilterExpr(q.Tags)}
	if q.SortBy != "" {
		args = append(args, "SORTBY", q.SortBy, "ASC")
	}
	args = append(args, "LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit))
	args = append(args, returnArgs(q.Return)...)
	args = append(args, "DIALECT", "2")

	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	msgs, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return db.SearchResult{}, searchError(err)
	}

	res, err := parseSearchResult(msgs)
	if err != nil {
		return db.SearchResult{}, db.NewError(db.OpSearch, err)
	}
	return res, nil
}

// SearchCount returns only the total match count for a query.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int64, error) {
	if !db.IsValidIdentifier(index) {
		return 0, db.NewError(db.OpSearch, fmt.Errorf("%w: invalid index name %q", db.ErrInvalidQuery, index))
	}
	if query == "" {
		query = "*"
	}

	cmd := s.client.B().Arbitrary("FT.SEARCH").
		Args(index, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	msgs, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return 0, searchError(err)
	}
	if len(msgs) == 0 {
		return 0, db.NewError(db.OpSearch, fmt.Errorf("empty search reply"))
	}
	total, err := msgs[0].AsInt64()
	if err != nil {
		return 0, db.NewError(db.OpSearch, err)
	}
	return total, nil
}

// parseSearchResult decodes the flat RESP2 FT.SEARCH reply:
// [total, key1, fields1, key2, fields2, ...].
func parseSearchResult(msgs []rueidis.RedisMessage) (db.SearchResult, error) {
	if len(msgs) == 0 {
		return db.SearchResult{}, fmt.Errorf("empty search reply")
	}

	total, err := msgs[0].AsInt64()
	if err != nil {
		return db.SearchResult{}, fmt.Errorf("parse total: %w", err)
	}

	body := msgs[1:]
	if len(body)%2 != 0 {
		return db.SearchResult{}, fmt.Errorf("malformed search reply: %d trailing elements", len(body))
	}

	entries := make([]db.SearchEntry, 0, len(body)/2)
	for i := 0; i < len(body); i += 2 {
		key, err := body[i].ToString()
		if err != nil {
			return db.SearchResult{}, fmt.Errorf("parse key: %w", err)
		}
		fieldMsgs, err := body[i+1].ToArray()
		if err != nil {
			return db.SearchResult{}, fmt.Errorf("parse fields of %q: %w", key, err)
		}
		fields, err := parseFieldPairs(fieldMsgs)
		if err != nil {
			return db.SearchResult{}, fmt.Errorf("parse fields of %q: %w", key, err)
		}
		entries = append(entries, db.SearchEntry{Key: key, Fields: fields})
	}
	return db.SearchResult{Total: total, Entries: entries}, nil
}

func parseFieldPairs(msgs []rueidis.RedisMessage) (map[string]string, error) {
	if len(msgs)%2 != 0 {
		return nil, fmt.Errorf("odd field pair count: %d", len(msgs))
	}
	fields := make(map[string]string, len(msgs)/2)
	for i := 0; i < len(msgs); i += 2 {
		name, err := msgs[i].ToString()
		if err != nil {
			return nil, err
		}
		value, err := msgs[i+1].ToString()
		if err != nil {
			return nil, err
		}
		fields[name] = value
	}
	return fields, nil
}

// tagFilterExpr renders a tag filter like "(@source_id:{abc})" or "*"
// when no filters are set. Fields are emitted in sorted order so the
// expression is deterministic.
func tagFilterExpr(tags map[string]string) string {
	if len(tags) == 0 {
		return "*"
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteByte('(')
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('@')
		sb.WriteString(name)
		sb.WriteString(":{")
		sb.WriteString(escapeTag(tags[name]))
		sb.WriteByte('}')
	}
	sb.WriteByte(')')
	return sb.String()
}

// escapeTag backslash-escapes RediSearch tag syntax characters.
func escapeTag(v string) string {
	var sb strings.Builder
	for _, r := range v {
		switch r {
		case ',', '.', '<', '>', '{', '}', '[', ']', '"', '\'', ':', ';',
			'!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '-', '+',
			'=', '~', '|', '/', '\\', ' ':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func returnArgs(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	args := make([]string, 0, len(fields)+2)
	args = append(args, "RETURN", strconv.Itoa(len(fields)))
	args = append(args, fields...)
	return args
}

func searchError(err error) error {
	if redisErrContains(err, "unknown index") || redisErrContains(err, "no such index") {
		return db.NewError(db.OpSearch, db.ErrIndexNotFound)
	}
	return db.NewError(db.OpSearch, err)
}

// vectorToBytes encodes float32s little-endian, the layout FLOAT32 vector
// fields expect.
func vectorToBytes(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
