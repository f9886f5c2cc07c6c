package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// MemoryIndex is an in-memory vector index using brute-force cosine search.
// Suitable for tests and small datasets; Save and Load persist a JSON snapshot.
type MemoryIndex struct {
	dimensions int
	records    map[string]Record
	mu         sync.RWMutex

	// snapshotPath, when set, is written on Close.
	snapshotPath string
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		records:    make(map[string]Record),
	}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Upsert inserts or replaces records by id. Either all records are written or none.
func (m *MemoryIndex) Upsert(ctx context.Context, records ...Record) error {
	for _, r := range records {
		if err := checkRecord(r, m.dimensions); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = Record{ID: r.ID, Vector: copyVector(r.Vector), Metadata: copyMetadata(r.Metadata)}
	}
	return nil
}

// Query returns the topK records most similar to vector that satisfy filter.
func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if len(vector) != m.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vector), m.dimensions)
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return bruteForce(vector, m.records, topK, filter), nil
}

// Fetch returns a copy of the record with id.
func (m *MemoryIndex) Fetch(ctx context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &Record{ID: r.ID, Vector: copyVector(r.Vector), Metadata: copyMetadata(r.Metadata)}, nil
}

// Delete removes records by id. Unknown ids are ignored.
func (m *MemoryIndex) Delete(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

// Stats returns the record count and dimension.
func (m *MemoryIndex) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{TotalVectorCount: len(m.records), Dimension: m.dimensions}, nil
}

// Close writes the snapshot if the index was opened from a file.
func (m *MemoryIndex) Close() error {
	return m.Save(m.snapshotPath)
}

type snapshot struct {
	Dimension int              `json:"dimension"`
	Records   []snapshotRecord `json:"records"`
}

type snapshotRecord struct {
	ID       string    `json:"id"`
	Vector   []float32 `json:"v"`
	Metadata Metadata  `json:"m,omitempty"`
}

// Save writes a snapshot of the index to path under an exclusive file lock.
// The directory is created if needed.
func (m *MemoryIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock index file: %w", err)
	}
	defer lock.Unlock()

	m.mu.RLock()
	snap := snapshot{Dimension: m.dimensions, Records: make([]snapshotRecord, 0, len(m.records))}
	for _, r := range m.records {
		snap.Records = append(snap.Records, snapshotRecord{ID: r.ID, Vector: r.Vector, Metadata: r.Metadata})
	}
	data, err := json.Marshal(snap)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// Load replaces the in-memory contents with the snapshot at path. Dimensions must match.
// If the file does not exist, no error is returned and the index is unchanged.
// The directory is created so the lock file can be opened on first run.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return fmt.Errorf("lock index file: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read index file: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Dimension != m.dimensions {
		return fmt.Errorf("%w: file has %d, index expects %d", ErrDimensionMismatch, snap.Dimension, m.dimensions)
	}
	records := make(map[string]Record, len(snap.Records))
	for _, r := range snap.Records {
		records[r.ID] = Record{ID: r.ID, Vector: r.Vector, Metadata: r.Metadata}
	}
	m.mu.Lock()
	m.records = records
	m.mu.Unlock()
	return nil
}
