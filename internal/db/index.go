package db

import (
	"fmt"
	"regexp"
)

// FieldType enumerates supported index field kinds.
type FieldType string

const (
	FieldText    FieldType = "TEXT"
	FieldTag     FieldType = "TAG"
	FieldNumeric FieldType = "NUMERIC"
	FieldVector  FieldType = "VECTOR"
)

// VectorOptions configures an HNSW vector field.
type VectorOptions struct {
	Dim            int
	DistanceMetric string // COSINE, L2 or IP
	M              int
	EFConstruction int
}

// IndexField describes one field of an index schema.
type IndexField struct {
	Name   string
	Type   FieldType
	Vector *VectorOptions // required when Type == FieldVector
}

// IndexDefinition describes an index over hash keys with a common prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

var identRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_\-]*$`)

// IsValidIdentifier reports whether s is safe to splice into an index schema.
func IsValidIdentifier(s string) bool {
	return s != "" && identRegexp.MatchString(s)
}

// Validate checks the definition before it is sent to the store.
func (d IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Name) {
		return fmt.Errorf("invalid index name %q", d.Name)
	}
	if d.Prefix == "" {
		return fmt.Errorf("index %q: empty key prefix", d.Name)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("index %q: no fields", d.Name)
	}
	for _, f := range d.Fields {
		if !IsValidIdentifier(f.Name) {
			return fmt.Errorf("index %q: invalid field name %q", d.Name, f.Name)
		}
		switch f.Type {
		case FieldText, FieldTag, FieldNumeric:
			if f.Vector != nil {
				return fmt.Errorf("index %q: field %q: vector options on non-vector field", d.Name, f.Name)
			}
		case FieldVector:
			if f.Vector == nil {
				return fmt.Errorf("index %q: field %q: missing vector options", d.Name, f.Name)
			}
			if f.Vector.Dim <= 0 {
				return fmt.Errorf("index %q: field %q: vector dim must be positive", d.Name, f.Name)
			}
			switch f.Vector.DistanceMetric {
			case "COSINE", "L2", "IP":
			default:
				return fmt.Errorf("index %q: field %q: unknown distance metric %q", d.Name, f.Name, f.Vector.DistanceMetric)
			}
		default:
			return fmt.Errorf("index %q: field %q: unknown type %q", d.Name, f.Name, f.Type)
		}
	}
	return nil
}
