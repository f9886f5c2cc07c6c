package matching

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMetadata(t *testing.T) {
	var missing *string
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.FixedZone("PHT", 8*3600))

	got := NormalizeMetadata(map[string]any{
		KeyClientName:            nil,
		KeyComplexityScore:       nil,
		KeyCompanyDomain:         missing,
		KeyRoleCategory:          models.RoleDataAnalyst,
		KeyMustHaveSkills:        []string{"SQL", "Excel"},
		KeyRecommendedRegions:    []models.Region{models.RegionPhilippines},
		KeyCreatedAt:             created,
		KeyRemoteWorkSuitability: models.RemoteHigh,
		"zero_time":              time.Time{},
		"ratio":                  float32(0.5),
		"count":                  int32(3),
	})

	assert.Equal(t, vector.Metadata{
		KeyClientName:            "",
		KeyComplexityScore:       0,
		KeyCompanyDomain:         "",
		KeyRoleCategory:          "Data Analyst",
		KeyMustHaveSkills:        `["SQL","Excel"]`,
		KeyRecommendedRegions:    `["Philippines"]`,
		KeyCreatedAt:             "2025-06-01T01:30:00Z",
		"zero_time":              "",
		"ratio":                  float64(0.5),
		"count":                  int64(3),
		KeyRemoteWorkSuitability: "high",
	}, got)
	require.NoError(t, vector.ValidateMetadata(got))
}

func TestEncodeDecodeList(t *testing.T) {
	assert.Equal(t, "[]", EncodeList(nil))

	items, err := DecodeList(EncodeList([]string{"A, B", `quote"d`}))
	require.NoError(t, err)
	assert.Equal(t, []string{"A, B", `quote"d`}, items)

	items, err = DecodeList("")
	require.NoError(t, err)
	assert.Equal(t, []string{}, items)

	items, err = DecodeList("not-json")
	assert.Error(t, err)
	assert.Equal(t, []string{}, items)
}

func TestDecodeMatch_RoundTrip(t *testing.T) {
	a := analysis(7, "SQL", "Python")
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	meta := scanMetadata("s1", "Data Analyst", "Job Title: Data Analyst", a,
		models.ScanVectorMetadata{CompanyDomain: "acme.com", ClientName: "Acme", CreatedAt: created})

	// Simulate a store that round-trips metadata through JSON.
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	var stored vector.Metadata
	require.NoError(t, json.Unmarshal(data, &stored))

	m, warnings := decodeMatch("s1", 0.91, stored)
	assert.Empty(t, warnings)
	assert.Equal(t, models.SimilarityMatch{
		ScanID:                "s1",
		SimilarityScore:       0.91,
		JobTitle:              "Data Analyst",
		CompanyDomain:         "acme.com",
		ClientName:            "Acme",
		RoleCategory:          "Data Analyst",
		ExperienceLevel:       "mid",
		ComplexityScore:       7,
		RemoteWorkSuitability: "high",
		MustHaveSkills:        []string{"SQL", "Python"},
		RecommendedRegions:    []string{"Philippines", "Latin America"},
		CreatedAt:             created,
		EmbeddingPreview:      "Job Title: Data Analyst",
	}, m)
}

func TestDecodeMatch_MalformedFieldsDefault(t *testing.T) {
	m, warnings := decodeMatch("s2", 0.8, vector.Metadata{
		KeyMustHaveSkills:     "not-json",
		KeyRecommendedRegions: `["Philippines"]`,
		KeyComplexityScore:    "high",
		KeyCreatedAt:          "yesterday",
	})

	assert.Equal(t, "s2", m.ScanID)
	assert.Equal(t, []string{}, m.MustHaveSkills)
	assert.Equal(t, []string{"Philippines"}, m.RecommendedRegions)
	assert.Equal(t, models.DefaultComplexity, m.ComplexityScore)
	assert.True(t, m.CreatedAt.IsZero())

	var fields []string
	for _, w := range warnings {
		fields = append(fields, w.Field)
	}
	assert.ElementsMatch(t, []string{KeyMustHaveSkills, KeyComplexityScore, KeyCreatedAt}, fields)
}

func TestDecodeMatch_MissingFields(t *testing.T) {
	m, warnings := decodeMatch("s3", 0.8, vector.Metadata{})
	assert.Empty(t, warnings)
	assert.Equal(t, models.DefaultComplexity, m.ComplexityScore)
	assert.Equal(t, []string{}, m.MustHaveSkills)
}

func TestScanMetadata_DefaultsComplexity(t *testing.T) {
	meta := scanMetadata("s4", "t", "text", models.JobAnalysis{}, models.ScanVectorMetadata{})
	assert.Equal(t, models.DefaultComplexity, meta[KeyComplexityScore])
	assert.Equal(t, "", meta[KeyCreatedAt])
	assert.Equal(t, "[]", meta[KeyMustHaveSkills])
	for k, v := range meta {
		assert.NotNil(t, v, k)
	}
}
