package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/marketscan/internal/models"
)

func newTestScan(id string, created time.Time) *models.MarketScan {
	return &models.MarketScan{
		ID:             id,
		ClientName:     "Acme",
		ClientEmail:    "ops@acme.com",
		CompanyDomain:  "acme.com",
		JobTitle:       "Data Analyst",
		JobDescription: "SQL and dashboards",
		Status:         models.ScanPending,
		CreatedAt:      created,
	}
}

func runStorageSuite(t *testing.T, store Storage) {
	ctx := context.Background()
	prefix := uuid.NewString()[:8] + "-"
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("CRUD", func(t *testing.T) {
		scan := newTestScan(prefix+"crud", base)
		if err := store.CreateScan(ctx, scan); err != nil {
			t.Fatal(err)
		}
		defer func() { _ = store.DeleteScan(ctx, scan.ID) }()
		if scan.UpdatedAt.IsZero() {
			t.Error("UpdatedAt should be set")
		}

		got, err := store.GetScan(ctx, scan.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.JobTitle != "Data Analyst" || got.Status != models.ScanPending || got.Analysis != nil {
			t.Errorf("got %+v", got)
		}
		if !got.CreatedAt.Equal(base) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, base)
		}

		scan.Status = models.ScanCompleted
		scan.ConfidenceScore = 0.84
		scan.SimilarScansCount = 3
		scan.Analysis = &models.JobAnalysis{
			RoleCategory:       models.RoleDataAnalyst,
			ExperienceLevel:    models.LevelMid,
			ComplexityScore:    6,
			MustHaveSkills:     []string{"SQL"},
			RecommendedRegions: []models.Region{models.RegionPhilippines},
		}
		scan.Salary = &models.SalaryRecommendations{
			ByRegion:           map[string]models.SalaryRange{"Philippines": {Low: 1, Mid: 2, High: 3}},
			RecommendedPayBand: models.PayBandMid,
		}
		if err := store.UpdateScan(ctx, scan); err != nil {
			t.Fatal(err)
		}
		got, err = store.GetScan(ctx, scan.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != models.ScanCompleted || got.ConfidenceScore != 0.84 || got.SimilarScansCount != 3 {
			t.Errorf("update not persisted: %+v", got)
		}
		if got.Analysis == nil || got.Analysis.ComplexityScore != 6 || got.Analysis.MustHaveSkills[0] != "SQL" {
			t.Errorf("analysis = %+v", got.Analysis)
		}
		if got.Salary == nil || got.Salary.ByRegion["Philippines"].Mid != 2 {
			t.Errorf("salary = %+v", got.Salary)
		}

		if err := store.DeleteScan(ctx, scan.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := store.GetScan(ctx, scan.ID); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("expected ErrScanNotFound after delete, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := store.GetScan(ctx, prefix+"missing"); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("GetScan: %v", err)
		}
		if err := store.UpdateScan(ctx, newTestScan(prefix+"missing", base)); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("UpdateScan: %v", err)
		}
		if err := store.DeleteScan(ctx, prefix+"missing"); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("DeleteScan: %v", err)
		}
	})

	t.Run("ListAndCount", func(t *testing.T) {
		before, err := store.CountScans(ctx)
		if err != nil {
			t.Fatal(err)
		}
		for i, status := range []models.ScanStatus{models.ScanCompleted, models.ScanFailed, models.ScanCompleted} {
			s := newTestScan(prefix+"list"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour))
			s.Status = status
			if err := store.CreateScan(ctx, s); err != nil {
				t.Fatal(err)
			}
			defer func(id string) { _ = store.DeleteScan(ctx, id) }(s.ID)
		}

		after, err := store.CountScans(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if after-before != 3 {
			t.Errorf("count grew by %d, want 3", after-before)
		}

		completed, err := store.ListScans(ctx, ListOptions{Status: models.ScanCompleted, Limit: 1000})
		if err != nil {
			t.Fatal(err)
		}
		var mine []string
		for _, s := range completed {
			if len(s.ID) > len(prefix) && s.ID[:len(prefix)] == prefix {
				mine = append(mine, s.ID)
			}
		}
		if len(mine) != 2 || mine[0] != prefix+"listc" || mine[1] != prefix+"lista" {
			t.Errorf("completed scans newest first = %v", mine)
		}

		ids, err := store.ListScanIDs(ctx, models.ScanCompleted)
		if err != nil {
			t.Fatal(err)
		}
		var myIDs []string
		for _, id := range ids {
			if strings.HasPrefix(id, prefix) {
				myIDs = append(myIDs, id)
			}
		}
		if !reflect.DeepEqual(myIDs, mine) {
			t.Errorf("ListScanIDs = %v, want ListScans order %v", myIDs, mine)
		}

		page, err := store.ListScans(ctx, ListOptions{Limit: 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(page) != 1 {
			t.Errorf("limit 1 returned %d", len(page))
		}
	})

	t.Run("SalaryBenchmarks", func(t *testing.T) {
		role := models.RoleLogisticsManager
		for _, b := range []models.SalaryBenchmark{
			{RoleCategory: role, Region: models.RegionPhilippines, ExperienceBand: "2-4 years",
				Range: models.SalaryRange{Low: 1000, Mid: 1200, High: 1400, SavingsVsUS: 72}},
			{RoleCategory: role, Region: models.RegionSouthAfrica, ExperienceBand: "9+ years",
				Range: models.SalaryRange{Low: 3000, Mid: 3500, High: 4000}},
		} {
			b := b
			if err := store.PutSalaryBenchmark(ctx, &b); err != nil {
				t.Fatal(err)
			}
		}

		got, err := store.SalaryBenchmarks(ctx, role, models.LevelMid)
		if err != nil {
			t.Fatal(err)
		}
		ph, ok := got[models.RegionPhilippines]
		if !ok || ph.Mid != 1200 || ph.Currency != "USD" || ph.Period != "monthly" || ph.SavingsVsUS != 72 {
			t.Errorf("PH benchmark = %+v (present %v)", ph, ok)
		}
		if _, ok := got[models.RegionSouthAfrica]; ok {
			t.Error("expert band should not match mid level")
		}

		// Overwrite by key.
		upd := models.SalaryBenchmark{RoleCategory: role, Region: models.RegionPhilippines, ExperienceBand: "2-4 years",
			Range: models.SalaryRange{Low: 1100, Mid: 1300, High: 1500}}
		if err := store.PutSalaryBenchmark(ctx, &upd); err != nil {
			t.Fatal(err)
		}
		got, _ = store.SalaryBenchmarks(ctx, role, models.LevelJunior)
		if got[models.RegionPhilippines].Mid != 1300 {
			t.Errorf("overwrite not applied: %+v", got[models.RegionPhilippines])
		}
	})

	t.Run("RejectsInvalidBenchmark", func(t *testing.T) {
		bad := []models.SalaryBenchmark{
			{RoleCategory: "Astronaut", Region: models.RegionPhilippines, ExperienceBand: "2-4 years"},
			{RoleCategory: models.RoleDataAnalyst, Region: "Mars", ExperienceBand: "2-4 years"},
			{RoleCategory: models.RoleDataAnalyst, Region: models.RegionPhilippines},
			{RoleCategory: models.RoleDataAnalyst, Region: models.RegionPhilippines, ExperienceBand: "2-4 years",
				Range: models.SalaryRange{Low: 5, Mid: 3, High: 4}},
		}
		for i := range bad {
			if err := store.PutSalaryBenchmark(ctx, &bad[i]); err == nil {
				t.Errorf("benchmark %d accepted", i)
			}
		}
	})
}

func TestSQLiteStorage(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "scans.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runStorageSuite(t, store)
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.CreateScan(ctx, newTestScan("mem", time.Time{})); err != nil {
		t.Fatal(err)
	}
	n, err := store.CountScans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scans.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := store.CreateScan(ctx, newTestScan("persisted", time.Time{})); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	store, err = NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.GetScan(ctx, "persisted"); err != nil {
		t.Errorf("scan lost after reopen: %v", err)
	}
}

func TestPostgresStorage(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewPostgresStorage(ctx, pool)
	if err != nil {
		pool.Close()
		t.Fatal(err)
	}
	defer store.Close()
	runStorageSuite(t, store)
}
