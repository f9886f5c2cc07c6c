// Package export renders market scans as xlsx reports and CSV listings.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/marketscan/internal/models"
)

// Sheet names of the scan workbook.
const (
	SheetSummary = "Summary"
	SheetSalary  = "Salary"
	SheetSkills  = "Skills"
	SheetSimilar = "Similar Scans"
)

const timeLayout = "2006-01-02 15:04"

// WriteWorkbook writes an xlsx report for one scan and its similar scans to w.
func WriteWorkbook(w io.Writer, scan *models.MarketScan, similar []models.SimilarityMatch) error {
	if scan == nil {
		return fmt.Errorf("scan is nil")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetSalary, SheetSkills, SheetSimilar} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summaryRows(scan)},
		{SheetSalary, salaryRows(scan.Salary)},
		{SheetSkills, skillRows(scan.Analysis)},
		{SheetSimilar, similarRows(similar)},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows, header); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, header int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, header)
}

func summaryRows(scan *models.MarketScan) [][]any {
	rows := [][]any{
		{"Field", "Value"},
		{"Scan ID", scan.ID},
		{"Client", scan.ClientName},
		{"Company domain", scan.CompanyDomain},
		{"Job title", scan.JobTitle},
		{"Status", string(scan.Status)},
		{"Confidence score", scan.ConfidenceScore},
		{"Similar scans", scan.SimilarScansCount},
		{"Created", scan.CreatedAt.UTC().Format(timeLayout)},
	}
	if a := scan.Analysis; a != nil {
		rows = append(rows,
			[]any{"Role category", string(a.RoleCategory)},
			[]any{"Experience level", string(a.ExperienceLevel)},
			[]any{"Years required", a.YearsExperienceRequired},
			[]any{"Complexity score", a.ComplexityScore},
			[]any{"Remote suitability", string(a.RemoteWorkSuitability)},
			[]any{"Recommended regions", strings.Join(a.RegionNames(), ", ")},
			[]any{"Unique challenges", a.UniqueChallenges},
		)
	}
	if s := scan.Salary; s != nil {
		rows = append(rows,
			[]any{"Recommended pay band", string(s.RecommendedPayBand)},
			[]any{"Cost efficiency", s.MarketInsights.CostEfficiency},
		)
	}
	return rows
}

func salaryRows(s *models.SalaryRecommendations) [][]any {
	rows := [][]any{{"Region", "Low", "Mid", "High", "Currency", "Period", "Savings vs US %"}}
	if s == nil {
		return rows
	}
	regions := make([]string, 0, len(s.ByRegion))
	for r := range s.ByRegion {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	for _, r := range regions {
		sr := s.ByRegion[r]
		rows = append(rows, []any{r, sr.Low, sr.Mid, sr.High, sr.Currency, sr.Period, sr.SavingsVsUS})
	}
	return rows
}

func skillRows(a *models.JobAnalysis) [][]any {
	rows := [][]any{{"Skill", "Kind"}}
	if a == nil {
		return rows
	}
	for _, s := range a.MustHaveSkills {
		rows = append(rows, []any{s, "must have"})
	}
	for _, s := range a.NiceToHaveSkills {
		rows = append(rows, []any{s, "nice to have"})
	}
	for _, r := range a.KeyResponsibilities {
		rows = append(rows, []any{r, "responsibility"})
	}
	return rows
}

func similarRows(matches []models.SimilarityMatch) [][]any {
	rows := [][]any{{"Scan ID", "Similarity", "Job title", "Company", "Role category", "Experience", "Complexity", "Created"}}
	for _, m := range matches {
		created := ""
		if !m.CreatedAt.IsZero() {
			created = m.CreatedAt.UTC().Format(timeLayout)
		}
		rows = append(rows, []any{
			m.ScanID, m.SimilarityScore, m.JobTitle, m.CompanyDomain,
			m.RoleCategory, m.ExperienceLevel, m.ComplexityScore, created,
		})
	}
	return rows
}
