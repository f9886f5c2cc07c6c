package matching

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hyperjump/marketscan/internal/models"
)

const (
	maxMatchReasons = 4
	recentWindow    = 180 * 24 * time.Hour
)

// Insights explains a match for display: why it matched, what it shares with
// the posting, and per-factor relevance scores. now is the reference time for recency.
func Insights(m models.SimilarityMatch, now time.Time) *models.MatchInsights {
	return &models.MatchInsights{
		MatchReasons:     matchReasons(m),
		KeySimilarities:  keySimilarities(m, now),
		RelevanceFactors: relevanceFactors(m, now),
	}
}

func matchReasons(m models.SimilarityMatch) []string {
	var reasons []string
	if m.RoleCategory != "" {
		reasons = append(reasons, "Similar role: "+m.RoleCategory)
	}
	if m.ExperienceLevel != "" {
		reasons = append(reasons, "Same experience level: "+m.ExperienceLevel)
	}
	switch {
	case m.ComplexityScore >= 7:
		reasons = append(reasons, "High complexity role")
	case m.ComplexityScore <= 3:
		reasons = append(reasons, "Low complexity role")
	}
	if n := len(m.MustHaveSkills); n >= 4 {
		reasons = append(reasons, fmt.Sprintf("Rich skill requirements (%d skills)", n))
	}
	if m.RemoteWorkSuitability != "" {
		reasons = append(reasons, "Remote work: "+m.RemoteWorkSuitability)
	}
	if len(reasons) > maxMatchReasons {
		reasons = reasons[:maxMatchReasons]
	}
	return reasons
}

func keySimilarities(m models.SimilarityMatch, now time.Time) []string {
	var out []string
	if m.CompanyDomain != "" {
		out = append(out, "Company: "+m.CompanyDomain)
	}
	if !m.CreatedAt.IsZero() && now.Sub(m.CreatedAt) < recentWindow {
		out = append(out, "Recent market scan")
	}
	if len(m.RecommendedRegions) > 0 {
		regions := m.RecommendedRegions
		if len(regions) > 2 {
			regions = regions[:2]
		}
		out = append(out, "Regions: "+strings.Join(regions, ", "))
	}
	return out
}

func relevanceFactors(m models.SimilarityMatch, now time.Time) models.RelevanceFactors {
	f := models.RelevanceFactors{
		SimilarityScore: m.SimilarityScore,
		ComplexityMatch: math.Min(float64(m.ComplexityScore)/10, 1),
	}
	if m.RoleCategory != "" {
		f.RoleAlignment = 0.8
	}
	if m.CreatedAt.IsZero() {
		// Missing or unparseable creation dates get a neutral score.
		f.RecencyScore = 0.5
	} else {
		days := math.Floor(now.Sub(m.CreatedAt).Hours() / 24)
		f.RecencyScore = math.Max(0, math.Min(1, 1-days/365))
	}
	return f
}
