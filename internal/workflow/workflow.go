// Package workflow runs the market scan lifecycle: analysis, similarity enhancement,
// salary recommendations, persistence, and indexing.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/marketscan/internal/analyzer"
	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/keyword"
	"github.com/hyperjump/marketscan/internal/matching"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/salary"
	"github.com/hyperjump/marketscan/internal/scanid"
	"github.com/hyperjump/marketscan/internal/search"
	"github.com/hyperjump/marketscan/internal/storage"
	"github.com/hyperjump/marketscan/pkg/utils"
)

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid scan request")

// Workflow creates and maintains market scans across storage and the search indices.
type Workflow struct {
	storage   storage.Storage
	analyzer  analyzer.Analyzer
	matching  *matching.Service
	salary    *salary.Calculator
	keyword   keyword.KeywordIndex // optional
	search    *search.Engine
	searchCfg config.SearchConfig
	cfg       config.MatchingConfig
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.logger = utils.OrNop(l) }
}

// WithKeywordIndex enables keyword indexing of completed scans.
func WithKeywordIndex(idx keyword.KeywordIndex) Option {
	return func(w *Workflow) { w.keyword = idx }
}

// WithSearchConfig sets the hybrid search weights and limits.
func WithSearchConfig(cfg *config.SearchConfig) Option {
	return func(w *Workflow) { w.searchCfg = *cfg }
}

// WithClock overrides the time source used for processing time.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithIDGenerator overrides scan id generation.
func WithIDGenerator(newID func() string) Option {
	return func(w *Workflow) { w.newID = newID }
}

// New creates a workflow over its collaborators.
func New(
	store storage.Storage,
	an analyzer.Analyzer,
	svc *matching.Service,
	calc *salary.Calculator,
	cfg *config.MatchingConfig,
	opts ...Option,
) *Workflow {
	w := &Workflow{
		storage:  store,
		analyzer: an,
		matching: svc,
		salary:   calc,
		cfg:      *cfg,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    scanid.New,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.searchCfg == (config.SearchConfig{}) {
		defaults := &config.Config{}
		config.ApplyDefaults(defaults)
		w.searchCfg = defaults.Search
	}
	w.search = search.NewEngine(store, w.keyword, svc, &w.searchCfg, w.logger)
	return w
}

// Result is a processed scan and the neighbors that informed it.
type Result struct {
	Scan    *models.MarketScan       `json:"scan"`
	Similar []models.SimilarityMatch `json:"similar_scans"`
}

// CreateScan validates req, stores a new scan and processes it.
// A scan whose analysis fails is stored with status failed and returned with the error.
func (w *Workflow) CreateScan(ctx context.Context, req models.MarketScanRequest) (*Result, error) {
	return w.SubmitScan(ctx, w.newID(), req)
}

// SubmitScan is CreateScan with a caller-chosen id. An existing scan with that id is
// updated with the request fields and processed again.
func (w *Workflow) SubmitScan(ctx context.Context, id string, req models.MarketScanRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	scan, err := w.storage.GetScan(ctx, id)
	switch {
	case err == nil:
		applyRequest(scan, req)
		scan.Status = models.ScanPending
		if err := w.storage.UpdateScan(ctx, scan); err != nil {
			return nil, err
		}
	case errors.Is(err, storage.ErrScanNotFound):
		scan = &models.MarketScan{ID: id, Status: models.ScanPending, CreatedAt: w.now().UTC()}
		applyRequest(scan, req)
		if err := w.storage.CreateScan(ctx, scan); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	w.logger.Info("market scan submitted",
		zap.String("scan_id", scan.ID),
		zap.String("company_domain", scan.CompanyDomain),
		zap.String("job_title", scan.JobTitle))
	return w.process(ctx, scan)
}

// Reanalyze runs the analysis pipeline again for a stored scan.
func (w *Workflow) Reanalyze(ctx context.Context, scanID string) (*Result, error) {
	scan, err := w.storage.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}
	return w.process(ctx, scan)
}

func (w *Workflow) process(ctx context.Context, scan *models.MarketScan) (*Result, error) {
	start := w.now()
	scan.Status = models.ScanAnalyzing
	if err := w.storage.UpdateScan(ctx, scan); err != nil {
		return nil, err
	}

	baseline, err := w.analyzer.Analyze(ctx, scan.Posting())
	if err != nil {
		w.logger.Error("job analysis failed", zap.String("scan_id", scan.ID), zap.Error(err))
		scan.Status = models.ScanFailed
		scan.ProcessingTimeSeconds = w.now().Sub(start).Seconds()
		if uerr := w.storage.UpdateScan(context.WithoutCancel(ctx), scan); uerr != nil {
			w.logger.Error("failed to record failed scan", zap.String("scan_id", scan.ID), zap.Error(uerr))
		}
		return &Result{Scan: scan, Similar: []models.SimilarityMatch{}}, fmt.Errorf("analyze scan %s: %w", scan.ID, err)
	}

	analysis, similar, confidence := w.matching.AnalyzeWithEnhancement(ctx, baseline, scan.JobTitle, scan.JobDescription, scan.ID)
	recs := w.salary.Recommend(ctx, analysis)

	scan.Analysis = &analysis
	scan.Salary = &recs
	scan.SimilarScansCount = len(similar)
	scan.ConfidenceScore = confidence
	scan.Status = models.ScanCompleted
	scan.ProcessingTimeSeconds = w.now().Sub(start).Seconds()
	if err := w.storage.UpdateScan(ctx, scan); err != nil {
		return nil, err
	}

	if w.keyword != nil {
		if err := w.keyword.Index(ctx, scan); err != nil {
			w.logger.Warn("keyword indexing failed", zap.String("scan_id", scan.ID), zap.Error(err))
		}
	}
	w.matching.PersistScanVector(ctx, scan.ID, scan.JobTitle, scan.JobDescription, analysis, models.ScanVectorMetadata{
		CompanyDomain: scan.CompanyDomain,
		ClientName:    scan.ClientName,
		CreatedAt:     scan.CreatedAt,
	})

	w.logger.Info("market scan completed",
		zap.String("scan_id", scan.ID),
		zap.String("role_category", string(analysis.RoleCategory)),
		zap.Int("similar_scans", len(similar)),
		zap.Float64("confidence", confidence),
		zap.Float64("processing_seconds", scan.ProcessingTimeSeconds))
	return &Result{Scan: scan, Similar: similar}, nil
}

// GetScan returns a stored scan.
func (w *Workflow) GetScan(ctx context.Context, scanID string) (*models.MarketScan, error) {
	return w.storage.GetScan(ctx, scanID)
}

// ListScans pages through stored scans, newest first.
func (w *Workflow) ListScans(ctx context.Context, opts storage.ListOptions) ([]*models.MarketScan, error) {
	return w.storage.ListScans(ctx, opts)
}

// DefaultThreshold asks Similar and SimilarToPosting for the configured
// similarity threshold. Any value in [0,1], zero included, is used as given.
const DefaultThreshold = -1.0

// Similar returns the neighbors of a stored scan, excluding the scan itself.
// A negative threshold or a non-positive maxResults falls back to the configured defaults.
func (w *Workflow) Similar(ctx context.Context, scanID string, threshold float64, maxResults int) ([]models.SimilarityMatch, float64, error) {
	scan, err := w.storage.GetScan(ctx, scanID)
	if err != nil {
		return nil, 0, err
	}
	threshold, maxResults = w.defaults(threshold, maxResults)
	matches, confidence := w.matching.FindSimilarMarketScans(ctx, scan.JobTitle, scan.JobDescription, scan.ID, threshold, maxResults)
	return matches, confidence, nil
}

// SimilarToPosting returns the neighbors of an ad-hoc posting that is not stored.
func (w *Workflow) SimilarToPosting(ctx context.Context, posting models.JobPosting, opts matching.FindOptions) ([]models.SimilarityMatch, float64) {
	opts.Threshold, opts.MaxResults = w.defaults(opts.Threshold, opts.MaxResults)
	return w.matching.FindSimilarWithCriteria(ctx, posting.Title, posting.Description, opts)
}

func (w *Workflow) defaults(threshold float64, maxResults int) (float64, int) {
	if threshold < 0 {
		threshold = w.cfg.SimilarThreshold
	}
	if maxResults <= 0 {
		maxResults = w.cfg.MaxResults
	}
	return threshold, maxResults
}

// Search runs a hybrid keyword and semantic query over stored scans.
func (w *Workflow) Search(ctx context.Context, query *search.Query) (*search.Response, error) {
	return w.search.Search(ctx, query)
}

// DeleteScan removes a scan from storage and both indices. Index cleanup failures are logged.
func (w *Workflow) DeleteScan(ctx context.Context, scanID string) error {
	if err := w.storage.DeleteScan(ctx, scanID); err != nil {
		return err
	}
	if w.keyword != nil {
		if err := w.keyword.Delete(ctx, scanID); err != nil {
			w.logger.Warn("keyword index delete failed", zap.String("scan_id", scanID), zap.Error(err))
		}
	}
	if err := w.matching.Purge(ctx, scanID); err != nil {
		w.logger.Warn("vector purge failed", zap.String("scan_id", scanID), zap.Error(err))
	}
	w.logger.Info("market scan deleted", zap.String("scan_id", scanID))
	return nil
}

// RecommendSalary prices an analysis supplied by the caller without creating a scan.
func (w *Workflow) RecommendSalary(ctx context.Context, analysis models.JobAnalysis) (models.SalaryRecommendations, error) {
	if err := analysis.Validate(); err != nil {
		return models.SalaryRecommendations{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return w.salary.Recommend(ctx, analysis), nil
}

func applyRequest(scan *models.MarketScan, req models.MarketScanRequest) {
	scan.ClientName = req.ClientName
	scan.ClientEmail = req.ClientEmail
	scan.CompanyDomain = req.CompanyDomain
	scan.JobTitle = req.JobTitle
	scan.JobDescription = req.JobDescription
	scan.HiringChallenges = req.HiringChallenges
}
