package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/marketscan/internal/models"
)

func completedScan() *models.MarketScan {
	return &models.MarketScan{
		ID:              "scan-1",
		ClientName:      "Acme",
		CompanyDomain:   "acme.com",
		JobTitle:        "Data Analyst",
		Status:          models.ScanCompleted,
		ConfidenceScore: 0.8364,
		CreatedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Analysis: &models.JobAnalysis{
			RoleCategory:       models.RoleDataAnalyst,
			ExperienceLevel:    models.LevelMid,
			ComplexityScore:    6,
			MustHaveSkills:     []string{"SQL", "Python"},
			NiceToHaveSkills:   []string{"dbt"},
			RecommendedRegions: []models.Region{models.RegionPhilippines, models.RegionLatinAmerica},
		},
		Salary: &models.SalaryRecommendations{
			ByRegion: map[string]models.SalaryRange{
				"Philippines":   {Low: 1183, Mid: 1392, High: 1600, Currency: "USD", Period: "monthly", SavingsVsUS: 71},
				"Latin America": {Low: 1713, Mid: 2016, High: 2318, Currency: "USD", Period: "monthly", SavingsVsUS: 58},
			},
			RecommendedPayBand: models.PayBandMid,
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	similar := []models.SimilarityMatch{{
		ScanID:          "old-1",
		SimilarityScore: 0.91,
		JobTitle:        "Senior Data Analyst",
		CompanyDomain:   "other.com",
		RoleCategory:    "Data Analyst",
		ExperienceLevel: "senior",
		ComplexityScore: 7,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, completedScan(), similar))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetSalary, SheetSkills, SheetSimilar}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Scan ID", "scan-1"}, summary[1])
	assert.Contains(t, summary, []string{"Recommended regions", "Philippines, Latin America"})
	assert.Contains(t, summary, []string{"Recommended pay band", "mid"})

	salary, err := f.GetRows(SheetSalary)
	require.NoError(t, err)
	require.Len(t, salary, 3)
	assert.Equal(t, "Latin America", salary[1][0])
	assert.Equal(t, []string{"Philippines", "1183", "1392", "1600", "USD", "monthly", "71"}, salary[2])

	skills, err := f.GetRows(SheetSkills)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Skill", "Kind"}, {"SQL", "must have"}, {"Python", "must have"}, {"dbt", "nice to have"}}, skills)

	rows, err := f.GetRows(SheetSimilar)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "old-1", rows[1][0])
	assert.Equal(t, "Senior Data Analyst", rows[1][2])
}

func TestWriteWorkbook_PendingScan(t *testing.T) {
	scan := &models.MarketScan{ID: "pending", Status: models.ScanPending}
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, scan, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	salary, err := f.GetRows(SheetSalary)
	require.NoError(t, err)
	assert.Len(t, salary, 1)

	assert.Error(t, WriteWorkbook(&buf, nil, nil))
}

func TestWriteCSV(t *testing.T) {
	pending := &models.MarketScan{
		ID:         "scan-2",
		ClientName: "Comma, Inc",
		JobTitle:   "Ops",
		Status:     models.ScanFailed,
		CreatedAt:  time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*models.MarketScan{completedScan(), pending}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{
		"scan-1", "2026-03-01T12:00:00Z", "completed", "Acme", "acme.com", "Data Analyst",
		"Data Analyst", "mid", "6", "SQL; Python", "Philippines; Latin America", "mid", "0", "0.836",
	}, records[1])
	assert.Equal(t, "Comma, Inc", records[2][3])
	assert.Equal(t, "", records[2][6])
}
