// Package keyword provides full-text search over market scans.
package keyword

import (
	"context"
	"strings"

	"github.com/hyperjump/marketscan/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution of job title matches. Defaults to 3.
	TitleBoost float64
	// FuzzyEnabled enables typo-tolerant matching of each query term.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Defaults to 1.
	Fuzziness int
	// RoleCategory restricts hits to one role category when set.
	RoleCategory models.RoleCategory
}

// KeywordIndex defines keyword search operations over scans.
type KeywordIndex interface {
	Index(ctx context.Context, scan *models.MarketScan) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string  `json:"scan_id"`
	Score float64 `json:"score"`
}

// ScanDocument is the indexed projection of a scan.
type ScanDocument struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Skills      string `json:"skills"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	Level       string `json:"level"`
}

// NewScanDocument projects the searchable fields of a scan.
func NewScanDocument(scan *models.MarketScan) ScanDocument {
	doc := ScanDocument{
		Title:       scan.JobTitle,
		Description: scan.JobDescription,
		Company:     strings.TrimSpace(scan.ClientName + " " + scan.CompanyDomain),
	}
	if a := scan.Analysis; a != nil {
		skills := append(append([]string(nil), a.MustHaveSkills...), a.NiceToHaveSkills...)
		doc.Skills = strings.Join(skills, " ")
		doc.Role = string(a.RoleCategory)
		doc.Level = string(a.ExperienceLevel)
	}
	return doc
}
