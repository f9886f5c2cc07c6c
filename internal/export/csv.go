package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperjump/marketscan/internal/models"
)

// CSVHeader is the column order of WriteCSV.
var CSVHeader = []string{
	"id", "created_at", "status", "client_name", "company_domain", "job_title",
	"role_category", "experience_level", "complexity_score", "must_have_skills",
	"recommended_regions", "pay_band", "similar_scans_count", "confidence_score",
}

// WriteCSV writes one flat row per scan. Missing analysis or salary fields are blank.
func WriteCSV(w io.Writer, scans []*models.MarketScan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, s := range scans {
		row := []string{
			s.ID,
			s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			string(s.Status),
			s.ClientName,
			s.CompanyDomain,
			s.JobTitle,
			"", "", "", "", "", "",
			strconv.Itoa(s.SimilarScansCount),
			strconv.FormatFloat(s.ConfidenceScore, 'f', 3, 64),
		}
		if a := s.Analysis; a != nil {
			row[6] = string(a.RoleCategory)
			row[7] = string(a.ExperienceLevel)
			row[8] = strconv.Itoa(a.ComplexityScore)
			row[9] = strings.Join(a.MustHaveSkills, "; ")
			row[10] = strings.Join(a.RegionNames(), "; ")
		}
		if s.Salary != nil {
			row[11] = string(s.Salary.RecommendedPayBand)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for scan %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
