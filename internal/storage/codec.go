package storage

import (
	"encoding/json"
	"fmt"

	"github.com/hyperjump/marketscan/internal/models"
)

// encodeReports marshals the JSON report columns of a scan. Absent reports encode as nil.
func encodeReports(scan *models.MarketScan) (analysis, salary []byte, err error) {
	if scan.Analysis != nil {
		if analysis, err = json.Marshal(scan.Analysis); err != nil {
			return nil, nil, fmt.Errorf("failed to marshal analysis: %w", err)
		}
	}
	if scan.Salary != nil {
		if salary, err = json.Marshal(scan.Salary); err != nil {
			return nil, nil, fmt.Errorf("failed to marshal salary recommendations: %w", err)
		}
	}
	return analysis, salary, nil
}

func decodeReports(scan *models.MarketScan, analysis, salary []byte) error {
	if len(analysis) > 0 {
		var a models.JobAnalysis
		if err := json.Unmarshal(analysis, &a); err != nil {
			return fmt.Errorf("failed to unmarshal analysis for scan %s: %w", scan.ID, err)
		}
		scan.Analysis = &a
	}
	if len(salary) > 0 {
		var s models.SalaryRecommendations
		if err := json.Unmarshal(salary, &s); err != nil {
			return fmt.Errorf("failed to unmarshal salary recommendations for scan %s: %w", scan.ID, err)
		}
		scan.Salary = &s
	}
	return nil
}

// benchmarkRange fills the currency and period defaults of a stored benchmark.
func benchmarkRange(low, mid, high int, currency, period string, savings int) models.SalaryRange {
	if currency == "" {
		currency = "USD"
	}
	if period == "" {
		period = "monthly"
	}
	return models.SalaryRange{Low: low, Mid: mid, High: high, Currency: currency, Period: period, SavingsVsUS: savings}
}

func validateBenchmark(b *models.SalaryBenchmark) error {
	if _, ok := models.ParseRoleCategory(string(b.RoleCategory)); !ok {
		return fmt.Errorf("invalid benchmark role category %q", b.RoleCategory)
	}
	if _, ok := models.ParseRegion(string(b.Region)); !ok {
		return fmt.Errorf("invalid benchmark region %q", b.Region)
	}
	if b.ExperienceBand == "" {
		return fmt.Errorf("benchmark experience band is required")
	}
	if b.Range.Low > b.Range.Mid || b.Range.Mid > b.Range.High {
		return fmt.Errorf("benchmark range must satisfy low <= mid <= high")
	}
	return nil
}
