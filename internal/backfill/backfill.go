// Package backfill rebuilds the scan vector index from stored completed scans.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/marketscan/internal/matching"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/storage"
	"github.com/hyperjump/marketscan/pkg/utils"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 4
)

// ScanSource lists and loads stored scans.
type ScanSource interface {
	ListScanIDs(ctx context.Context, status models.ScanStatus) ([]string, error)
	GetScan(ctx context.Context, id string) (*models.MarketScan, error)
}

// BatchWriter embeds and upserts a batch of scans.
type BatchWriter interface {
	PutBatch(ctx context.Context, batch []matching.ScanVector) error
}

// Options tune a backfill run.
type Options struct {
	BatchSize   int
	Concurrency int
	// Progress is called after each batch with the number of scans processed so far.
	Progress func(done, total int)
	Logger   *zap.Logger
}

// Report counts the outcome of a run. Skipped scans are completed scans without an analysis.
type Report struct {
	Scanned int `json:"scanned"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Run writes every completed scan to the index in batches, with up to
// opts.Concurrency batches in flight. The set of scans is fixed when the run
// starts: scans deleted or reopened since are passed over, and scans created
// since are left to the normal write path. A failed batch is counted and
// logged and the run continues; only context cancellation aborts it.
func Run(ctx context.Context, src ScanSource, dst BatchWriter, opts Options) (Report, error) {
	logger := utils.OrNop(opts.Logger)
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		report Report
		items  []matching.ScanVector
	)
	ids, err := src.ListScanIDs(ctx, models.ScanCompleted)
	if err != nil {
		return report, fmt.Errorf("failed to list scans: %w", err)
	}
	for _, id := range ids {
		s, err := src.GetScan(ctx, id)
		if errors.Is(err, storage.ErrScanNotFound) {
			logger.Debug("scan deleted during backfill", zap.String("scan_id", id))
			continue
		}
		if err != nil {
			return report, fmt.Errorf("failed to load scan %s: %w", id, err)
		}
		if s.Status != models.ScanCompleted {
			continue
		}
		report.Scanned++
		if s.Analysis == nil {
			report.Skipped++
			logger.Warn("completed scan has no analysis, skipping", zap.String("scan_id", s.ID))
			continue
		}
		items = append(items, toScanVector(s))
	}

	total := len(items)
	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := items[start:end]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := dst.PutBatch(gctx, batch)

			mu.Lock()
			defer mu.Unlock()
			done += len(batch)
			if err != nil {
				report.Failed += len(batch)
				logger.Error("backfill batch failed",
					zap.String("first_scan_id", batch[0].ScanID),
					zap.Int("size", len(batch)),
					zap.Error(err))
			} else {
				report.Indexed += len(batch)
			}
			if opts.Progress != nil {
				opts.Progress(done, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	logger.Info("backfill finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func toScanVector(s *models.MarketScan) matching.ScanVector {
	return matching.ScanVector{
		ScanID:      s.ID,
		Title:       s.JobTitle,
		Description: s.JobDescription,
		Analysis:    *s.Analysis,
		Metadata: models.ScanVectorMetadata{
			CompanyDomain: s.CompanyDomain,
			ClientName:    s.ClientName,
			CreatedAt:     s.CreatedAt,
		},
	}
}
