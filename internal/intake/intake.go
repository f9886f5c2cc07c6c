// Package intake turns job posting files dropped into inbox directories into market scans.
package intake

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/extract"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/scanid"
	"github.com/hyperjump/marketscan/internal/workflow"
	"github.com/hyperjump/marketscan/pkg/utils"
)

const queueSize = 64

// Submitter creates or refreshes a scan under a fixed id.
type Submitter interface {
	SubmitScan(ctx context.Context, id string, req models.MarketScanRequest) (*workflow.Result, error)
}

// Intake extracts postings from files and submits them one at a time.
type Intake struct {
	cfg       config.IntakeConfig
	extractor *extract.Extractor
	submitter Submitter
	logger    *zap.Logger
	queue     chan string
}

// New creates an Intake for cfg. Files that do not name a client get cfg's client fields.
func New(cfg config.IntakeConfig, submitter Submitter, logger *zap.Logger) *Intake {
	return &Intake{
		cfg:       cfg,
		extractor: extract.NewExtractor(extract.DefaultMaxBytes),
		submitter: submitter,
		logger:    utils.OrNop(logger),
		queue:     make(chan string, queueSize),
	}
}

func (in *Intake) defaults() models.MarketScanRequest {
	return models.MarketScanRequest{
		ClientName:    in.cfg.ClientName,
		ClientEmail:   in.cfg.ClientEmail,
		CompanyDomain: in.cfg.CompanyDomain,
	}
}

// ProcessFile extracts the posting at path and submits it. The scan id is derived
// from the absolute path, so editing a file refreshes the same scan.
func (in *Intake) ProcessFile(ctx context.Context, path string) (*workflow.Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if !extract.Supported(filepath.Ext(abs)) {
		return nil, fmt.Errorf("unsupported posting file: %s", filepath.Base(abs))
	}
	posting, err := in.extractor.ExtractPosting(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read posting %s: %w", filepath.Base(abs), err)
	}

	id := scanid.FromPath(abs)
	res, err := in.submitter.SubmitScan(ctx, id, posting.Request(in.defaults()))
	if err != nil {
		return res, err
	}
	in.logger.Info("posting file scanned",
		zap.String("path", abs),
		zap.String("scan_id", id),
		zap.Int("similar_scans", len(res.Similar)))
	return res, nil
}

// Run watches the configured directories, submitting existing files first, and
// blocks until ctx is cancelled.
func (in *Intake) Run(ctx context.Context, opts ...WatcherOption) error {
	if len(in.cfg.Directories) == 0 {
		return fmt.Errorf("no intake directories configured")
	}
	opts = append([]WatcherOption{WithWatcherLogger(in.logger)}, opts...)
	enqueue := func(path string) {
		select {
		case in.queue <- path:
		case <-ctx.Done():
		}
	}
	w := NewWatcher(in.cfg.Directories, in.extensions(), enqueue, opts...)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start intake watcher: %w", err)
	}
	defer w.Stop()

	in.logger.Info("watching intake directories", zap.Strings("directories", w.Directories()))
	go w.SyncExistingFiles()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-in.queue:
			if _, err := in.ProcessFile(ctx, path); err != nil {
				in.logger.Error("failed to scan posting file", zap.String("path", path), zap.Error(err))
			}
		}
	}
}

// extensions keeps only configured extensions the extractor can read.
func (in *Intake) extensions() []string {
	if len(in.cfg.Extensions) == 0 {
		return extract.SupportedExtensions
	}
	var out []string
	for _, e := range in.cfg.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if extract.Supported(e) {
			out = append(out, e)
		} else {
			in.logger.Warn("ignoring unsupported intake extension", zap.String("extension", e))
		}
	}
	if len(out) == 0 {
		return extract.SupportedExtensions
	}
	return out
}
