// Package search runs hybrid (keyword + semantic) search over stored market scans.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/keyword"
	"github.com/hyperjump/marketscan/internal/matching"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/storage"
	"github.com/hyperjump/marketscan/pkg/utils"
)

const snippetRunes = 200

// ErrNoBackend is returned when neither backend can serve a query.
var ErrNoBackend = errors.New("no search backend available")

// Engine fuses bleve hits with vector similarity and loads the ranked scans.
type Engine struct {
	storage  storage.Storage
	keyword  keyword.KeywordIndex // optional
	matching *matching.Service    // optional
	config   config.SearchConfig
	logger   *zap.Logger
}

// NewEngine creates a search engine. A nil keyword index or matching service
// disables that backend.
func NewEngine(
	store storage.Storage,
	keywordIndex keyword.KeywordIndex,
	svc *matching.Service,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		storage:  store,
		keyword:  keywordIndex,
		matching: svc,
		config:   *cfg,
		logger:   utils.OrNop(logger),
	}
}

// Search runs both backends concurrently and returns one page of fused hits.
// A semantic failure degrades to keyword-only results; a keyword failure is returned.
func (e *Engine) Search(ctx context.Context, query *Query) (*Response, error) {
	startTime := time.Now()
	if err := query.Validate(e.config.DefaultLimit, e.config.MaxLimit); err != nil {
		return nil, err
	}
	keywordOn := query.KeywordEnabled && e.keyword != nil
	semanticOn := query.SemanticEnabled && e.matching != nil
	if !keywordOn && !semanticOn {
		return nil, ErrNoBackend
	}

	var (
		keywordResults []*keyword.KeywordResult
		semanticHits   []models.SimilarityMatch
		semanticErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	if keywordOn {
		g.Go(func() error {
			results, err := e.keyword.Search(gctx, query.Text, e.config.Candidates, &keyword.SearchOptions{
				FuzzyEnabled: query.Fuzzy,
				RoleCategory: query.RoleCategory,
			})
			if err != nil {
				return fmt.Errorf("keyword search failed: %w", err)
			}
			keywordResults = results
			return nil
		})
	}
	if semanticOn {
		g.Go(func() error {
			matches, _, err := e.matching.Matcher().FindSimilar(gctx, query.Text, "", matching.FindOptions{
				Threshold:  e.config.SemanticThreshold,
				MaxResults: e.config.Candidates,
				Criteria:   matching.Criteria{RoleCategory: string(query.RoleCategory)},
			})
			semanticHits, semanticErr = matches, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if semanticErr != nil {
		e.logger.Warn("semantic search failed, using keyword results only",
			zap.String("query", query.Text), zap.Error(semanticErr))
		semanticOn = false
		if !keywordOn {
			return nil, fmt.Errorf("semantic search failed: %w", semanticErr)
		}
	}

	kw, sem := weights(e.config.KeywordWeight, e.config.SemanticWeight, keywordOn, semanticOn)
	fused := Fuse(NormalizeKeywordScores(keywordResults), SemanticScores(semanticHits), kw, sem)
	if query.MinScore > 0 {
		filtered := fused[:0]
		for _, r := range fused {
			if r.Score >= query.MinScore {
				filtered = append(filtered, r)
			}
		}
		fused = filtered
	}

	start := query.Offset
	end := query.Offset + query.Limit
	if start > len(fused) {
		start = len(fused)
	}
	if end > len(fused) {
		end = len(fused)
	}

	response := &Response{
		Query: query.Text,
		Hits:  make([]*Hit, 0, end-start),
		Total: len(fused),
	}
	for i, r := range fused[start:end] {
		scan, err := e.storage.GetScan(ctx, r.ScanID)
		if errors.Is(err, storage.ErrScanNotFound) {
			e.logger.Debug("search hit without stored scan", zap.String("scan_id", r.ScanID))
			continue
		}
		if err != nil {
			return nil, err
		}
		response.Hits = append(response.Hits, &Hit{
			Scan:          scan,
			Score:         r.Score,
			KeywordScore:  r.KeywordScore,
			SemanticScore: r.SemanticScore,
			Rank:          start + i + 1,
			Snippet:       Snippet(scan.JobDescription, query.Text, snippetRunes),
		})
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	e.logger.Debug("search completed",
		zap.String("query", query.Text),
		zap.Int("keyword_hits", len(keywordResults)),
		zap.Int("semantic_hits", len(semanticHits)),
		zap.Int("total", response.Total),
		zap.Int64("query_time_ms", response.QueryTime))
	return response, nil
}
