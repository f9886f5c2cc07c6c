package workflow

import (
	"context"
	"math"
	"sort"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/storage"
)

const (
	insightsWindow     = 50
	minInsightScans    = 3
	topDemandedRegions = 3
)

// MarketInsights aggregates the role's scans among the most recent completed scans.
func (w *Workflow) MarketInsights(ctx context.Context, role models.RoleCategory) (*models.RoleMarketInsights, error) {
	recent, err := w.storage.ListScans(ctx, storage.ListOptions{Limit: insightsWindow, Status: models.ScanCompleted})
	if err != nil {
		return nil, err
	}
	var scans []*models.MarketScan
	for _, s := range recent {
		if s.Analysis != nil && s.Analysis.RoleCategory == role {
			scans = append(scans, s)
		}
	}
	return aggregateInsights(role, scans), nil
}

func aggregateInsights(role models.RoleCategory, scans []*models.MarketScan) *models.RoleMarketInsights {
	out := &models.RoleMarketInsights{
		RoleCategory:   role,
		DataPoints:     len(scans),
		AnalysisPeriod: "last_50_scans",
	}
	if len(scans) < minInsightScans {
		return out
	}
	out.Sufficient = true

	demand := make(map[string]int)
	bands := map[models.PayBand]int{models.PayBandLow: 0, models.PayBandMid: 0, models.PayBandHigh: 0}
	total := 0
	for _, s := range scans {
		for _, r := range s.Analysis.RecommendedRegions {
			demand[string(r)]++
		}
		total += s.Analysis.ComplexityScore
		if s.Salary != nil {
			bands[s.Salary.RecommendedPayBand]++
		}
	}

	avg := float64(total) / float64(len(scans))
	out.AverageComplexity = math.Round(avg*10) / 10
	out.SalaryDistribution = bands

	for region, n := range demand {
		out.MostInDemandRegions = append(out.MostInDemandRegions, models.RegionDemand{Region: region, DemandScore: n})
	}
	sort.Slice(out.MostInDemandRegions, func(i, j int) bool {
		a, b := out.MostInDemandRegions[i], out.MostInDemandRegions[j]
		if a.DemandScore != b.DemandScore {
			return a.DemandScore > b.DemandScore
		}
		return a.Region < b.Region
	})
	if len(out.MostInDemandRegions) > topDemandedRegions {
		out.MostInDemandRegions = out.MostInDemandRegions[:topDemandedRegions]
	}

	switch {
	case avg > 7:
		out.MarketCompetitiveness = "high"
	case avg > 4:
		out.MarketCompetitiveness = "medium"
	default:
		out.MarketCompetitiveness = "low"
	}
	out.HiringDifficulty = "moderate"
	if avg > 7 {
		out.HiringDifficulty = "challenging"
	}
	return out
}
