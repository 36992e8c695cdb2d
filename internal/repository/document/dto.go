package document

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strconv"
	"time"

	domdoc "github.com/calyptra/mona/internal/domain/document"
)

// buildChunkFields flattens a chunk for HSET. The vector is stored as a
// binary string (little-endian float32), the layout the index expects.
func buildChunkFields(doc *domdoc.Document) map[string]any {
	return map[string]any{
		"source_id": doc.SourceID(),
		"split_id":  strconv.Itoa(doc.SplitID()),
		"content":   doc.Content(),
		"meta":      metaToJSON(doc.Meta()),
		"vector":    vectorToBytes(doc.Vector()),
	}
}

// parseChunkFields hydrates a chunk from a hash. Malformed fields fall back
// to zero values; storage is trusted but never panics the read path.
func parseChunkFields(id string, fields map[string]string) domdoc.Document {
	splitID, _ := strconv.Atoi(fields["split_id"])
	return domdoc.Reconstruct(
		id,
		fields["source_id"],
		splitID,
		fields["content"],
		metaFromJSON(fields["meta"]),
		bytesToVector(fields["vector"]),
	)
}

func buildSourceFields(src domdoc.Source) map[string]any {
	return map[string]any{
		"source_id":   src.SourceID,
		"name":        src.Name,
		"chunks":      strconv.Itoa(src.ChunkCount),
		"meta":        metaToJSON(src.Meta),
		"ingested_at": strconv.FormatInt(src.IngestedAt.Unix(), 10),
	}
}

func parseSourceFields(fields map[string]string) domdoc.Source {
	chunks, _ := strconv.Atoi(fields["chunks"])
	ts, _ := strconv.ParseInt(fields["ingested_at"], 10, 64)
	return domdoc.Source{
		SourceID:   fields["source_id"],
		Name:       fields["name"],
		ChunkCount: chunks,
		Meta:       metaFromJSON(fields["meta"]),
		IngestedAt: time.Unix(ts, 0).UTC(),
	}
}

func metaToJSON(meta map[string]string) string {
	if len(meta) == 0 {
		return "{}"
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func metaFromJSON(raw string) map[string]string {
	if raw == "" || raw == "{}" {
		return nil
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil
	}
	return meta
}

func mergeMeta(current, incoming map[string]string) map[string]string {
	merged := make(map[string]string, len(current)+len(incoming))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}

// vectorToBytes serializes []float32 little-endian, 4 bytes per element.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector is the inverse of vectorToBytes.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
