// Package vector provides vector indexes that store (id, vector, metadata) records
// and answer cosine-similarity queries with optional metadata filters.
package vector

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Fetch when no record has the id.
	ErrNotFound = errors.New("vector not found")
	// ErrDimensionMismatch is returned when a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidMetadata is returned when a metadata value is null or not a flat scalar.
	ErrInvalidMetadata = errors.New("invalid metadata value")
)

// Metadata is the flat scalar metadata stored with a vector.
// Values must be string, bool, or a number; nil is rejected.
type Metadata map[string]any

// Record is a vector with its id and metadata.
type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Match is a single query hit.
type Match struct {
	ID       string
	Score    float64 // cosine similarity clamped to [0,1]
	Metadata Metadata
}

// Stats summarizes an index.
type Stats struct {
	TotalVectorCount int
	Dimension        int
}

// VectorIndex stores records and answers nearest-neighbor queries.
// Upsert overwrites existing records with the same id.
type VectorIndex interface {
	Type() string
	Upsert(ctx context.Context, records ...Record) error
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error)
	Fetch(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, ids ...string) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// ValidateMetadata rejects nil values and non-scalar types.
func ValidateMetadata(m Metadata) error {
	for k, v := range m {
		switch v.(type) {
		case string, bool, int, int32, int64, float32, float64:
		case nil:
			return fmt.Errorf("%w: %q is null", ErrInvalidMetadata, k)
		default:
			return fmt.Errorf("%w: %q has type %T", ErrInvalidMetadata, k, v)
		}
	}
	return nil
}

func checkRecord(r Record, dim int) error {
	if r.ID == "" {
		return errors.New("record id is required")
	}
	if len(r.Vector) != dim {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(r.Vector), dim)
	}
	return ValidateMetadata(r.Metadata)
}

func copyMetadata(m Metadata) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyVector(v []float32) []float32 {
	return append([]float32(nil), v...)
}
