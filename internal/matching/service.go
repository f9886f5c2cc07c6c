package matching

import (
	"context"
	"errors"

	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/embedding"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/vector"
	"go.uber.org/zap"
)

// Service composes matching, confidence scoring, enhancement, and the vector
// write path behind entry points that never fail the calling workflow.
type Service struct {
	matcher  *Matcher
	store    *ScanVectorStore
	enhancer *Enhancer
	index    vector.VectorIndex
	cfg      config.MatchingConfig
	opts     options
}

// NewService wires a matcher and a store around one shared TextBuilder.
// Timeouts default to those in cfg; a WithTimeouts option overrides them.
func NewService(embedder embedding.Embedder, index vector.VectorIndex, cfg *config.MatchingConfig, maxChars int, opts ...Option) *Service {
	opts = append([]Option{WithTimeouts(TimeoutsFromConfig(cfg))}, opts...)
	o := newOptions(opts)
	text := NewTextBuilder(maxChars, o.logger)
	return &Service{
		matcher:  NewMatcher(embedder, index, text, opts...),
		store:    NewScanVectorStore(embedder, index, text, opts...),
		enhancer: NewEnhancer(o.logger),
		index:    index,
		cfg:      *cfg,
		opts:     o,
	}
}

// Matcher returns the underlying matcher.
func (s *Service) Matcher() *Matcher { return s.matcher }

// Store returns the underlying vector store.
func (s *Service) Store() *ScanVectorStore { return s.store }

// FindSimilarMarketScans returns matches with insights and their confidence.
// Any failure degrades to no matches and zero confidence.
func (s *Service) FindSimilarMarketScans(ctx context.Context, title, description, currentScanID string, threshold float64, maxResults int) ([]models.SimilarityMatch, float64) {
	return s.FindSimilarWithCriteria(ctx, title, description, FindOptions{
		ExcludeID:  currentScanID,
		Threshold:  threshold,
		MaxResults: maxResults,
	})
}

// FindSimilarWithCriteria is FindSimilarMarketScans with full query options.
func (s *Service) FindSimilarWithCriteria(ctx context.Context, title, description string, opts FindOptions) ([]models.SimilarityMatch, float64) {
	matches, _, err := s.matcher.FindSimilar(ctx, title, description, opts)
	if err != nil {
		s.opts.logger.Error("similar scan search failed", zap.String("job_title", title), zap.Error(err))
		return []models.SimilarityMatch{}, 0
	}
	now := s.opts.now()
	for i := range matches {
		matches[i].Insights = Insights(matches[i], now)
	}
	confidence := Confidence(matches)
	s.opts.logger.Info("similar scans found",
		zap.Int("count", len(matches)),
		zap.Float64("confidence", confidence))
	return matches, confidence
}

// AnalyzeWithEnhancement finds neighbors at the analysis threshold and blends
// them into baseline. On failure it returns a copy of baseline, no matches, and zero confidence.
func (s *Service) AnalyzeWithEnhancement(ctx context.Context, baseline models.JobAnalysis, title, description, scanID string) (models.JobAnalysis, []models.SimilarityMatch, float64) {
	matches, confidence := s.FindSimilarMarketScans(ctx, title, description, scanID, s.cfg.AnalysisThreshold, s.cfg.MaxResults)
	if len(matches) == 0 {
		return baseline.Clone(), matches, confidence
	}
	return s.enhancer.Enhance(baseline, matches), matches, confidence
}

// PersistScanVector writes a completed scan to the index and reports success.
func (s *Service) PersistScanVector(ctx context.Context, scanID, title, description string, analysis models.JobAnalysis, meta models.ScanVectorMetadata) bool {
	return s.store.Store(ctx, scanID, title, description, analysis, meta)
}

// Fetch returns the stored view of a scan vector.
func (s *Service) Fetch(ctx context.Context, scanID string) (*models.SimilarityMatch, error) {
	rec, err := s.index.Fetch(ctx, scanID)
	if err != nil {
		if errors.Is(err, vector.ErrNotFound) {
			return nil, err
		}
		return nil, &IndexError{Op: "fetch", Err: err}
	}
	m, warnings := decodeMatch(rec.ID, 1, rec.Metadata)
	for _, w := range warnings {
		s.opts.logger.Warn("malformed scan metadata",
			zap.String("scan_id", rec.ID),
			zap.String("field", w.Field),
			zap.Error(w.Err))
	}
	return &m, nil
}

// Purge removes scan vectors by id.
func (s *Service) Purge(ctx context.Context, scanIDs ...string) error {
	ctx, cancel := withTimeout(ctx, s.opts.timeouts.Upsert)
	defer cancel()
	if err := s.index.Delete(ctx, scanIDs...); err != nil {
		return &IndexError{Op: "delete", Err: err}
	}
	s.opts.logger.Info("purged scan vectors", zap.Int("count", len(scanIDs)))
	return nil
}

// Stats summarizes the vector index.
func (s *Service) Stats(ctx context.Context) (models.IndexStats, error) {
	ctx, cancel := withTimeout(ctx, s.opts.timeouts.Query)
	defer cancel()
	st, err := s.index.Stats(ctx)
	if err != nil {
		return models.IndexStats{}, &IndexError{Op: "stats", Err: err}
	}
	return models.IndexStats{TotalVectorCount: st.TotalVectorCount, Dimension: st.Dimension}, nil
}
