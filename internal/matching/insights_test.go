package matching

import (
	"testing"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestInsights(t *testing.T) {
	m := models.SimilarityMatch{
		SimilarityScore:       0.88,
		RoleCategory:          "Data Analyst",
		ExperienceLevel:       "senior",
		ComplexityScore:       8,
		RemoteWorkSuitability: "high",
		MustHaveSkills:        []string{"SQL", "Python", "dbt", "Looker"},
		RecommendedRegions:    []string{"Philippines", "Latin America", "South Africa"},
		CompanyDomain:         "acme.com",
		CreatedAt:             fixedNow.AddDate(0, 0, -73),
	}

	got := Insights(m, fixedNow)

	assert.Equal(t, []string{
		"Similar role: Data Analyst",
		"Same experience level: senior",
		"High complexity role",
		"Rich skill requirements (4 skills)",
	}, got.MatchReasons)
	assert.Equal(t, []string{"Company: acme.com", "Recent market scan", "Regions: Philippines, Latin America"}, got.KeySimilarities)
	assert.Equal(t, 0.88, got.RelevanceFactors.SimilarityScore)
	assert.Equal(t, 0.8, got.RelevanceFactors.RoleAlignment)
	assert.InDelta(t, 0.8, got.RelevanceFactors.ComplexityMatch, 1e-9)
	assert.InDelta(t, 0.8, got.RelevanceFactors.RecencyScore, 1e-9)
}

func TestInsights_SparseMatch(t *testing.T) {
	m := models.SimilarityMatch{SimilarityScore: 0.7, ComplexityScore: 2, RemoteWorkSuitability: "low"}

	got := Insights(m, fixedNow)

	assert.Equal(t, []string{"Low complexity role", "Remote work: low"}, got.MatchReasons)
	assert.Empty(t, got.KeySimilarities)
	assert.Equal(t, 0.0, got.RelevanceFactors.RoleAlignment)
	assert.Equal(t, 0.5, got.RelevanceFactors.RecencyScore)
}

func TestInsights_OldScan(t *testing.T) {
	m := models.SimilarityMatch{ComplexityScore: 5, CreatedAt: fixedNow.AddDate(-2, 0, 0)}
	got := Insights(m, fixedNow)
	assert.NotContains(t, got.KeySimilarities, "Recent market scan")
	assert.Equal(t, 0.0, got.RelevanceFactors.RecencyScore)
	assert.Empty(t, got.MatchReasons)
}
