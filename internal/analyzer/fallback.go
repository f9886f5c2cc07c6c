package analyzer

import (
	"context"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/pkg/utils"
	"go.uber.org/zap"
)

// FallbackAnalyzer tries primary and answers with secondary when primary fails.
type FallbackAnalyzer struct {
	primary   Analyzer
	secondary Analyzer
	logger    *zap.Logger
}

// NewFallbackAnalyzer wraps primary with a fallback.
func NewFallbackAnalyzer(primary, secondary Analyzer, logger *zap.Logger) *FallbackAnalyzer {
	return &FallbackAnalyzer{primary: primary, secondary: secondary, logger: utils.OrNop(logger)}
}

// Analyze implements Analyzer.
func (f *FallbackAnalyzer) Analyze(ctx context.Context, posting models.JobPosting) (models.JobAnalysis, error) {
	a, err := f.primary.Analyze(ctx, posting)
	if err == nil {
		return a, nil
	}
	if ctx.Err() != nil {
		return models.JobAnalysis{}, ctx.Err()
	}
	f.logger.Warn("job analysis failed, using fallback rules",
		zap.String("job_title", posting.Title),
		zap.Error(err))
	return f.secondary.Analyze(ctx, posting)
}
