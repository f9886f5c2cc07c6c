package workflow

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/storage"
)

const (
	DefaultTrendLookbackDays = 90
	trendTopN                = 3
	trendPageSize            = 200
)

// Trends summarizes completed scans created in the last lookbackDays days.
// IndexedScans is the vector index size, or zero when stats are unavailable.
func (w *Workflow) Trends(ctx context.Context, lookbackDays int) (*models.MarketTrends, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultTrendLookbackDays
	}
	cutoff := w.now().AddDate(0, 0, -lookbackDays)

	var scans []*models.MarketScan
	for offset := 0; ; offset += trendPageSize {
		page, err := w.storage.ListScans(ctx, storage.ListOptions{Offset: offset, Limit: trendPageSize, Status: models.ScanCompleted})
		if err != nil {
			return nil, err
		}
		older := false
		for _, s := range page {
			if s.CreatedAt.Before(cutoff) {
				older = true
				break
			}
			scans = append(scans, s)
		}
		if older || len(page) < trendPageSize {
			break
		}
	}

	trends := summarizeTrends(scans)
	trends.AnalysisPeriod = fmt.Sprintf("%d days", lookbackDays)
	if stats, err := w.matching.Stats(ctx); err == nil {
		trends.IndexedScans = stats.TotalVectorCount
	}
	return trends, nil
}

func summarizeTrends(scans []*models.MarketScan) *models.MarketTrends {
	out := &models.MarketTrends{TotalScans: len(scans)}
	roles := make(map[string]int)
	regions := make(map[string]int)
	remote := make(map[models.RemoteSuitability]int)
	analyzed, complexity := 0, 0
	for _, s := range scans {
		if s.Analysis == nil {
			continue
		}
		analyzed++
		complexity += s.Analysis.ComplexityScore
		roles[string(s.Analysis.RoleCategory)]++
		for _, r := range s.Analysis.RecommendedRegions {
			regions[string(r)]++
		}
		if s.Analysis.RemoteWorkSuitability != "" {
			remote[s.Analysis.RemoteWorkSuitability]++
		}
	}
	if analyzed == 0 {
		return out
	}
	out.AverageComplexity = math.Round(float64(complexity)/float64(analyzed)*10) / 10
	out.MostCommonRoles = topCounts(roles, trendTopN)
	out.PopularRegions = topCounts(regions, trendTopN)

	best := 0
	for _, level := range []models.RemoteSuitability{models.RemoteHigh, models.RemoteMedium, models.RemoteLow} {
		if remote[level] > best {
			best = remote[level]
			out.RemoteSuitability = level
		}
	}
	return out
}

// topCounts returns the n most frequent names, ties broken by name.
func topCounts(counts map[string]int, n int) []models.CategoryCount {
	out := make([]models.CategoryCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, models.CategoryCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
