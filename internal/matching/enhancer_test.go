package matching

import (
	"testing"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhance_FewerThanTwoMatchesIsIdentity(t *testing.T) {
	e := NewEnhancer(nil)
	baseline := analysis(8, "SQL", "Excel")

	assert.Equal(t, baseline, e.Enhance(baseline, nil))
	assert.Equal(t, baseline, e.Enhance(baseline, []models.SimilarityMatch{matchWith(0.9, 2, "Python", "Python")}))
}

func TestEnhance_ComplexityBlend(t *testing.T) {
	e := NewEnhancer(nil)
	baseline := analysis(8, "SQL")
	got := e.Enhance(baseline, []models.SimilarityMatch{matchWith(0.9, 6), matchWith(0.8, 4)})
	// round(8*0.7 + 5*0.3) = round(7.1)
	assert.Equal(t, 7, got.ComplexityScore)
}

func TestBlendComplexity(t *testing.T) {
	tests := []struct {
		baseline int
		avg      float64
		want     int
	}{
		{8, 5, 7},
		{1, 1, 1},
		{10, 10, 10},
		{5, 10, 7},  // 6.5 rounds up
		{12, 10, 10}, // clamped
		{0, 1, 1},   // clamped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BlendComplexity(tt.baseline, tt.avg), "baseline %d avg %v", tt.baseline, tt.avg)
	}
}

func TestEnhance_ComplexityAlwaysInRange(t *testing.T) {
	e := NewEnhancer(nil)
	for base := 1; base <= 10; base++ {
		for a := 1; a <= 10; a++ {
			for b := 1; b <= 10; b++ {
				got := e.Enhance(analysis(base), []models.SimilarityMatch{matchWith(0.9, a), matchWith(0.8, b)})
				require.GreaterOrEqual(t, got.ComplexityScore, 1)
				require.LessOrEqual(t, got.ComplexityScore, 10)
			}
		}
	}
}

func TestEnhance_SkillSuggestions(t *testing.T) {
	e := NewEnhancer(nil)
	baseline := analysis(5, "SQL", "Excel")
	matches := []models.SimilarityMatch{
		matchWith(0.9, 5, "Python", "sql", "Looker", "dbt"),
		matchWith(0.85, 5, "python ", "Looker", "Tableau", "dbt"),
		matchWith(0.8, 5, "dbt", "Airflow"),
	}

	got := e.Enhance(baseline, matches)

	// Python, Looker, and dbt each appear in two matches; only the first two are taken.
	// sql and Tableau are already known to the baseline.
	assert.Equal(t, []string{"Tableau", "Python", "Looker"}, got.NiceToHaveSkills)
	assert.Equal(t, baseline.MustHaveSkills, got.MustHaveSkills)
}

func TestEnhance_SkillCountsDistinctMatches(t *testing.T) {
	baseline := analysis(5)
	matches := []models.SimilarityMatch{
		matchWith(0.9, 5, "Go", "go", "GO"),
		matchWith(0.8, 5, "Rust"),
	}
	assert.Empty(t, SuggestSkills(baseline, matches))
}

func TestEnhance_OnlyAllowedFieldsChange(t *testing.T) {
	e := NewEnhancer(nil)
	baseline := analysis(8, "SQL")
	baseline.YearsExperienceRequired = "3-5 years"
	baseline.KeyResponsibilities = []string{"Build dashboards"}
	baseline.UniqueChallenges = "Fast growth"
	baseline.SalaryFactors = []string{"Experience level"}
	matches := []models.SimilarityMatch{
		{SimilarityScore: 0.9, ComplexityScore: 3, RoleCategory: "Operations Manager", ExperienceLevel: "senior", MustHaveSkills: []string{"Python"}},
		{SimilarityScore: 0.8, ComplexityScore: 3, RoleCategory: "Operations Manager", ExperienceLevel: "senior", MustHaveSkills: []string{"Python"}},
	}

	got := e.Enhance(baseline, matches)

	want := baseline.Clone()
	want.NiceToHaveSkills = append(want.NiceToHaveSkills, "Python")
	want.ComplexityScore = 7 // round(5.6 + 0.9)
	assert.Equal(t, want, got)
}

func TestEnhance_DoesNotMutateBaseline(t *testing.T) {
	e := NewEnhancer(nil)
	nice := make([]string, 1, 10)
	nice[0] = "Tableau"
	baseline := analysis(5, "SQL")
	baseline.NiceToHaveSkills = nice

	got := e.Enhance(baseline, []models.SimilarityMatch{matchWith(0.9, 5, "Python"), matchWith(0.8, 5, "Python")})

	assert.Equal(t, []string{"Tableau", "Python"}, got.NiceToHaveSkills)
	assert.Equal(t, []string{"Tableau"}, baseline.NiceToHaveSkills)
	assert.Empty(t, nice[:2][1], "baseline backing array was written")
}

func TestEnhance_MalformedMatchesFallBack(t *testing.T) {
	e := NewEnhancer(nil)
	baseline := analysis(8, "SQL")
	got := e.Enhance(baseline, []models.SimilarityMatch{matchWith(0.9, 0, "Python"), matchWith(0.8, 42, "Python")})
	assert.Equal(t, baseline, got)
}
