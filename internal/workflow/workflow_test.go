package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hyperjump/marketscan/internal/analyzer"
	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/embedding"
	"github.com/hyperjump/marketscan/internal/keyword"
	"github.com/hyperjump/marketscan/internal/matching"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/salary"
	"github.com/hyperjump/marketscan/internal/search"
	"github.com/hyperjump/marketscan/internal/storage"
	"github.com/hyperjump/marketscan/internal/vector"
)

type fixture struct {
	wf      *Workflow
	store   *storage.SQLiteStorage
	vectors *vector.MemoryIndex
	keyword *keyword.BleveIndex
}

func matchingConfig() *config.MatchingConfig {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return &cfg.Matching
}

func newFixture(t *testing.T, an analyzer.Analyzer) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	vectors, err := vector.NewMemoryIndex(32)
	require.NoError(t, err)

	kw, err := keyword.NewBleveIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kw.Close() })

	cfg := matchingConfig()
	svc := matching.NewService(embedding.NewMockEmbedder(32), vectors, cfg, matching.DefaultMaxChars, matching.WithLogger(logger))

	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(500 * time.Millisecond)
		return tick
	}

	wf := New(store, an, svc, salary.NewCalculator(store, logger), cfg,
		WithLogger(logger),
		WithKeywordIndex(kw),
		WithClock(clock),
	)
	return &fixture{wf: wf, store: store, vectors: vectors, keyword: kw}
}

func analystRequest() models.MarketScanRequest {
	return models.MarketScanRequest{
		ClientName:     "Acme",
		ClientEmail:    "ops@acme.com",
		CompanyDomain:  "https://www.Acme.com/",
		JobTitle:       "Data Analyst",
		JobDescription: "Build Looker dashboards and SQL models for the growth team.",
	}
}

func TestCreateScan_FirstScan(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	res, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)

	scan := res.Scan
	assert.Equal(t, models.ScanCompleted, scan.Status)
	assert.Equal(t, "acme.com", scan.CompanyDomain)
	assert.Empty(t, res.Similar)
	assert.Equal(t, 0, scan.SimilarScansCount)
	assert.Equal(t, 0.0, scan.ConfidenceScore)
	assert.InDelta(t, 0.5, scan.ProcessingTimeSeconds, 1e-9)
	require.NotNil(t, scan.Analysis)
	assert.Equal(t, models.RoleDataAnalyst, scan.Analysis.RoleCategory)
	require.NotNil(t, scan.Salary)
	assert.Equal(t, 1392, scan.Salary.ByRegion["Philippines"].Mid)

	stored, err := f.store.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanCompleted, stored.Status)

	st, err := f.vectors.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalVectorCount)

	found, err := f.wf.Search(ctx, &search.Query{Text: "looker", KeywordEnabled: true})
	require.NoError(t, err)
	require.Len(t, found.Hits, 1)
	assert.Equal(t, scan.ID, found.Hits[0].Scan.ID)
}

func TestCreateScan_UsesSimilarScans(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	first, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)

	second, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)
	require.Len(t, second.Similar, 1)
	assert.Equal(t, first.Scan.ID, second.Similar[0].ScanID)
	assert.InDelta(t, 1.0, second.Similar[0].SimilarityScore, 1e-5)
	assert.InDelta(t, 1.0, second.Scan.ConfidenceScore, 1e-5)
	assert.Equal(t, 1, second.Scan.SimilarScansCount)
	assert.NotNil(t, second.Similar[0].Insights)

	third, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)
	assert.Len(t, third.Similar, 2)
	for _, m := range third.Similar {
		assert.NotEqual(t, third.Scan.ID, m.ScanID)
	}
	assert.Equal(t, models.DefaultComplexity, third.Scan.Analysis.ComplexityScore)
}

func TestCreateScan_InvalidRequest(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	req := analystRequest()
	req.ClientEmail = "not-an-email"

	_, err := f.wf.CreateScan(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	n, err := f.store.CountScans(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, models.JobPosting) (models.JobAnalysis, error) {
	return models.JobAnalysis{}, errors.New("model unavailable")
}

func TestCreateScan_AnalysisFailure(t *testing.T) {
	f := newFixture(t, failingAnalyzer{})
	ctx := context.Background()

	res, err := f.wf.CreateScan(ctx, analystRequest())
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, models.ScanFailed, res.Scan.Status)

	stored, err := f.store.GetScan(ctx, res.Scan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanFailed, stored.Status)
	assert.Nil(t, stored.Analysis)

	st, err := f.vectors.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.TotalVectorCount, "failed scans are not indexed")
}

func TestSubmitScan_SameIDUpdates(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	_, err := f.wf.SubmitScan(ctx, "fixed-id", analystRequest())
	require.NoError(t, err)

	req := analystRequest()
	req.JobTitle = "Senior Data Analyst"
	res, err := f.wf.SubmitScan(ctx, "fixed-id", req)
	require.NoError(t, err)
	assert.Equal(t, "Senior Data Analyst", res.Scan.JobTitle)
	assert.Empty(t, res.Similar, "a resubmitted scan never matches itself")

	n, err := f.store.CountScans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSimilar(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	a, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)
	b, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)

	matches, confidence, err := f.wf.Similar(ctx, a.Scan.ID, DefaultThreshold, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, b.Scan.ID, matches[0].ScanID)
	assert.Greater(t, confidence, 0.99)

	_, _, err = f.wf.Similar(ctx, "missing", DefaultThreshold, 0)
	assert.ErrorIs(t, err, storage.ErrScanNotFound)

	adhoc, _ := f.wf.SimilarToPosting(ctx, models.JobPosting{Title: "Data Analyst", Description: analystRequest().JobDescription}, matching.FindOptions{Threshold: DefaultThreshold})
	assert.Len(t, adhoc, 2)
}

func TestSimilar_ZeroThresholdIsHonored(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	a, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)
	_, err = f.wf.CreateScan(ctx, models.MarketScanRequest{
		ClientName:     "Acme",
		ClientEmail:    "ops@acme.com",
		CompanyDomain:  "acme.com",
		JobTitle:       "Podcast Producer",
		JobDescription: "Edit audio episodes, write show notes and schedule guests.",
	})
	require.NoError(t, err)

	configured, _, err := f.wf.Similar(ctx, a.Scan.ID, DefaultThreshold, 0)
	require.NoError(t, err)
	assert.Empty(t, configured, "unrelated scan should fall below the configured threshold")

	all, _, err := f.wf.Similar(ctx, a.Scan.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1, "threshold 0 must not be replaced by the configured default")
}

func TestReanalyze(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	created, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)

	res, err := f.wf.Reanalyze(ctx, created.Scan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanCompleted, res.Scan.Status)
	assert.Empty(t, res.Similar)

	_, err = f.wf.Reanalyze(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrScanNotFound)
}

func TestDeleteScan(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	res, err := f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)
	require.NoError(t, f.wf.DeleteScan(ctx, res.Scan.ID))

	_, err = f.store.GetScan(ctx, res.Scan.ID)
	assert.ErrorIs(t, err, storage.ErrScanNotFound)
	st, err := f.vectors.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.TotalVectorCount)
	n, err := f.keyword.DocCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, f.wf.DeleteScan(ctx, res.Scan.ID), storage.ErrScanNotFound)
}

func TestMarketInsights(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.wf.CreateScan(ctx, analystRequest())
		require.NoError(t, err)
	}
	got, err := f.wf.MarketInsights(ctx, models.RoleDataAnalyst)
	require.NoError(t, err)
	assert.False(t, got.Sufficient)
	assert.Equal(t, 2, got.DataPoints)

	_, err = f.wf.CreateScan(ctx, analystRequest())
	require.NoError(t, err)
	got, err = f.wf.MarketInsights(ctx, models.RoleDataAnalyst)
	require.NoError(t, err)
	assert.True(t, got.Sufficient)
	assert.Equal(t, 5.0, got.AverageComplexity)
	assert.Equal(t, "medium", got.MarketCompetitiveness)
	assert.Equal(t, "moderate", got.HiringDifficulty)
	assert.Equal(t, []models.RegionDemand{
		{Region: "Latin America", DemandScore: 3},
		{Region: "Philippines", DemandScore: 3},
	}, got.MostInDemandRegions)
	assert.Equal(t, 3, got.SalaryDistribution[models.PayBandMid])
}

func TestAggregateInsights(t *testing.T) {
	scan := func(c int, band models.PayBand, regions ...models.Region) *models.MarketScan {
		return &models.MarketScan{
			Analysis: &models.JobAnalysis{ComplexityScore: c, RecommendedRegions: regions},
			Salary:   &models.SalaryRecommendations{RecommendedPayBand: band},
		}
	}
	got := aggregateInsights(models.RoleEcommerceManager, []*models.MarketScan{
		scan(8, models.PayBandHigh, models.RegionPhilippines, models.RegionUnitedStates),
		scan(9, models.PayBandHigh, models.RegionPhilippines, models.RegionSouthAfrica),
		scan(7, models.PayBandMid, models.RegionPhilippines, models.RegionLatinAmerica, models.RegionSouthAfrica),
		scan(8, models.PayBandHigh, models.RegionUnitedStates),
	})

	assert.True(t, got.Sufficient)
	assert.Equal(t, 8.0, got.AverageComplexity)
	assert.Equal(t, "high", got.MarketCompetitiveness)
	assert.Equal(t, "challenging", got.HiringDifficulty)
	assert.Equal(t, []models.RegionDemand{
		{Region: "Philippines", DemandScore: 3},
		{Region: "South Africa", DemandScore: 2},
		{Region: "United States", DemandScore: 2},
	}, got.MostInDemandRegions)
	assert.Equal(t, map[models.PayBand]int{models.PayBandLow: 0, models.PayBandMid: 1, models.PayBandHigh: 3}, got.SalaryDistribution)
}

func TestTrends(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.wf.CreateScan(ctx, analystRequest())
		require.NoError(t, err)
	}
	got, err := f.wf.Trends(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalScans)
	assert.Equal(t, 2, got.IndexedScans)
	assert.Equal(t, "90 days", got.AnalysisPeriod)
	assert.Equal(t, []models.CategoryCount{{Name: "Data Analyst", Count: 2}}, got.MostCommonRoles)
	assert.Equal(t, models.RemoteHigh, got.RemoteSuitability)
}

func TestSummarizeTrends(t *testing.T) {
	scan := func(role models.RoleCategory, c int, remote models.RemoteSuitability, regions ...models.Region) *models.MarketScan {
		return &models.MarketScan{Analysis: &models.JobAnalysis{
			RoleCategory:          role,
			ComplexityScore:       c,
			RemoteWorkSuitability: remote,
			RecommendedRegions:    regions,
		}}
	}
	got := summarizeTrends([]*models.MarketScan{
		scan(models.RoleContentMarketer, 4, models.RemoteHigh, models.RegionPhilippines),
		scan(models.RoleContentMarketer, 5, models.RemoteMedium, models.RegionPhilippines, models.RegionLatinAmerica),
		scan(models.RoleDataAnalyst, 7, models.RemoteMedium, models.RegionSouthAfrica),
		{ID: "no-analysis"},
	})

	assert.Equal(t, 4, got.TotalScans)
	assert.Equal(t, 5.3, got.AverageComplexity)
	assert.Equal(t, models.RemoteMedium, got.RemoteSuitability)
	assert.Equal(t, []models.CategoryCount{
		{Name: "Content Marketer", Count: 2},
		{Name: "Data Analyst", Count: 1},
	}, got.MostCommonRoles)
	assert.Equal(t, []models.CategoryCount{
		{Name: "Philippines", Count: 2},
		{Name: "Latin America", Count: 1},
		{Name: "South Africa", Count: 1},
	}, got.PopularRegions)
}

func TestSummarizeTrends_Empty(t *testing.T) {
	got := summarizeTrends(nil)
	assert.Zero(t, got.TotalScans)
	assert.Empty(t, got.MostCommonRoles)
	assert.Zero(t, got.AverageComplexity)
}

func TestRecommendSalary(t *testing.T) {
	f := newFixture(t, analyzer.NewRuleBasedAnalyzer())
	ctx := context.Background()

	recs, err := f.wf.RecommendSalary(ctx, models.JobAnalysis{
		RoleCategory:       models.RoleDataAnalyst,
		ExperienceLevel:    models.LevelMid,
		ComplexityScore:    5,
		RecommendedRegions: []models.Region{models.RegionPhilippines},
	})
	require.NoError(t, err)
	assert.Contains(t, recs.ByRegion, "Philippines")

	_, err = f.wf.RecommendSalary(ctx, models.JobAnalysis{RoleCategory: "Astronaut", ExperienceLevel: models.LevelMid, ComplexityScore: 5})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
