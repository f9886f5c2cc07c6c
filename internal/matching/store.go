package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/marketscan/internal/embedding"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/vector"
	"go.uber.org/zap"
)

// ScanVector is one completed scan to be written to the index.
type ScanVector struct {
	ScanID      string
	Title       string
	Description string
	Analysis    models.JobAnalysis
	Metadata    models.ScanVectorMetadata
}

// ScanVectorStore writes completed scans to the vector index.
type ScanVectorStore struct {
	embedder embedding.Embedder
	index    vector.VectorIndex
	text     *TextBuilder
	opts     options
}

// NewScanVectorStore creates a store. text must be the same builder the Matcher uses.
func NewScanVectorStore(embedder embedding.Embedder, index vector.VectorIndex, text *TextBuilder, opts ...Option) *ScanVectorStore {
	return &ScanVectorStore{embedder: embedder, index: index, text: text, opts: newOptions(opts)}
}

// Store writes one scan and reports success. Failures are logged, never returned,
// so a completed analysis is not lost when the vector write fails.
func (s *ScanVectorStore) Store(ctx context.Context, scanID, title, description string, analysis models.JobAnalysis, meta models.ScanVectorMetadata) bool {
	err := s.Put(ctx, ScanVector{ScanID: scanID, Title: title, Description: description, Analysis: analysis, Metadata: meta})
	if err != nil {
		s.opts.logger.Error("failed to store scan vector", zap.String("scan_id", scanID), zap.Error(err))
		return false
	}
	s.opts.logger.Info("stored scan vector", zap.String("scan_id", scanID))
	return true
}

// Put embeds and upserts one scan. Re-putting a scan id replaces the stored record.
func (s *ScanVectorStore) Put(ctx context.Context, sv ScanVector) error {
	if sv.ScanID == "" {
		return errors.New("scan id is required")
	}
	text := s.text.Build(sv.Title, sv.Description)

	ectx, cancel := withTimeout(ctx, s.opts.timeouts.Embed)
	vec, err := s.embedder.Embed(ectx, text)
	cancel()
	if err != nil {
		return &ProviderError{Op: "embed", Err: err}
	}
	return s.upsert(ctx, s.record(sv, text, vec))
}

// PutBatch embeds all scans in one batch call and upserts them together.
func (s *ScanVectorStore) PutBatch(ctx context.Context, batch []ScanVector) error {
	if len(batch) == 0 {
		return nil
	}
	texts := make([]string, len(batch))
	for i, sv := range batch {
		if sv.ScanID == "" {
			return fmt.Errorf("scan %d: scan id is required", i)
		}
		texts[i] = s.text.Build(sv.Title, sv.Description)
	}

	ectx, cancel := withTimeout(ctx, s.opts.timeouts.Embed)
	vecs, err := s.embedder.EmbedBatch(ectx, texts)
	cancel()
	if err != nil {
		return &ProviderError{Op: "embed batch", Err: err}
	}
	if len(vecs) != len(batch) {
		return &ProviderError{Op: "embed batch", Err: fmt.Errorf("got %d embeddings for %d texts", len(vecs), len(batch))}
	}

	records := make([]vector.Record, len(batch))
	for i, sv := range batch {
		records[i] = s.record(sv, texts[i], vecs[i])
	}
	return s.upsert(ctx, records...)
}

func (s *ScanVectorStore) record(sv ScanVector, text string, vec []float32) vector.Record {
	meta := sv.Metadata
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.opts.now()
	}
	return vector.Record{
		ID:       sv.ScanID,
		Vector:   vec,
		Metadata: scanMetadata(sv.ScanID, sv.Title, text, sv.Analysis, meta),
	}
}

func (s *ScanVectorStore) upsert(ctx context.Context, records ...vector.Record) error {
	ctx, cancel := withTimeout(ctx, s.opts.timeouts.Upsert)
	defer cancel()
	if err := s.index.Upsert(ctx, records...); err != nil {
		return &IndexError{Op: "upsert", Err: err}
	}
	return nil
}
