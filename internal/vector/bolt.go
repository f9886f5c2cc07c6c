package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

var bucketVectors = []byte("scan_vectors")

// BoltIndex persists records in a bbolt file and keeps them in memory for brute-force search.
type BoltIndex struct {
	db        *bbolt.DB
	dimension int
	mu        sync.RWMutex
	records   map[string]Record
}

type storedVector struct {
	Vector   []float32 `json:"v"`
	Metadata Metadata  `json:"m,omitempty"`
}

// NewBoltIndex opens or creates the bbolt file at path and loads existing vectors.
func NewBoltIndex(path string, dimension int) (*BoltIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create vectors bucket: %w", err)
	}

	idx := &BoltIndex{db: db, dimension: dimension, records: make(map[string]Record)}
	if err := idx.load(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	return idx, nil
}

// load reads all vectors into memory. Entries with a different dimension are skipped.
func (b *BoltIndex) load() error {
	return b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketVectors)
		return bkt.ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil
			}
			if len(stored.Vector) != b.dimension {
				return nil
			}
			b.records[string(k)] = Record{ID: string(k), Vector: stored.Vector, Metadata: stored.Metadata}
			return nil
		})
	})
}

// Type returns the index type identifier.
func (b *BoltIndex) Type() string {
	return string(IndexTypeBolt)
}

// Upsert writes records in one transaction, replacing existing ids.
func (b *BoltIndex) Upsert(ctx context.Context, records ...Record) error {
	for _, r := range records {
		if err := checkRecord(r, b.dimension); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketVectors)
		for _, r := range records {
			data, err := json.Marshal(storedVector{Vector: r.Vector, Metadata: r.Metadata})
			if err != nil {
				return err
			}
			if err := bkt.Put([]byte(r.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	for _, r := range records {
		b.records[r.ID] = Record{ID: r.ID, Vector: copyVector(r.Vector), Metadata: copyMetadata(r.Metadata)}
	}
	return nil
}

// Query returns the topK records most similar to vector that satisfy filter.
func (b *BoltIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if len(vector) != b.dimension {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vector), b.dimension)
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bruteForce(vector, b.records, topK, filter), nil
}

// Fetch returns the record with id.
func (b *BoltIndex) Fetch(ctx context.Context, id string) (*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &Record{ID: r.ID, Vector: copyVector(r.Vector), Metadata: copyMetadata(r.Metadata)}, nil
}

// Delete removes records by id.
func (b *BoltIndex) Delete(ctx context.Context, ids ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketVectors)
		for _, id := range ids {
			if err := bkt.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	for _, id := range ids {
		delete(b.records, id)
	}
	return nil
}

// Stats returns the record count and dimension.
func (b *BoltIndex) Stats(ctx context.Context) (Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{TotalVectorCount: len(b.records), Dimension: b.dimension}, nil
}

// Close closes the bbolt file.
func (b *BoltIndex) Close() error {
	return b.db.Close()
}
