package vector

import (
	"context"
	"fmt"

	"github.com/hyperjump/marketscan/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeMemory keeps vectors in memory and snapshots them to a JSON file.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeBolt persists vectors in a bbolt file. This is the default.
	IndexTypeBolt IndexType = "bolt"
	// IndexTypePgVector stores vectors in Postgres using the pgvector extension.
	// Requires a connection pool.
	IndexTypePgVector IndexType = "pgvector"
)

// NewVectorIndex creates a vector index from cfg with the given dimension.
// pool is only used for pgvector and may be nil otherwise.
func NewVectorIndex(ctx context.Context, cfg *config.VectorConfig, dimensions int, pool *pgxpool.Pool) (VectorIndex, error) {
	switch IndexType(cfg.IndexType) {
	case IndexTypeBolt, "":
		return NewBoltIndex(cfg.Path, dimensions)
	case IndexTypeMemory:
		idx, err := NewMemoryIndex(dimensions)
		if err != nil {
			return nil, err
		}
		if err := idx.Load(cfg.Path); err != nil {
			return nil, err
		}
		idx.snapshotPath = cfg.Path
		return idx, nil
	case IndexTypePgVector:
		if pool == nil {
			return nil, fmt.Errorf("pgvector index requires a postgres connection")
		}
		return NewPgVectorIndex(ctx, pool, cfg.Table, dimensions)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: bolt, memory, pgvector)", cfg.IndexType)
	}
}
