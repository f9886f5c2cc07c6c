package models

import (
	"fmt"
	"strings"
	"time"
)

// ScanStatus is the lifecycle state of a market scan.
type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanAnalyzing ScanStatus = "analyzing"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// MarketScan is a persisted market scan report.
type MarketScan struct {
	ID                    string                 `json:"id"`
	ClientName            string                 `json:"client_name"`
	ClientEmail           string                 `json:"client_email"`
	CompanyDomain         string                 `json:"company_domain"`
	JobTitle              string                 `json:"job_title"`
	JobDescription        string                 `json:"job_description"`
	HiringChallenges      string                 `json:"hiring_challenges,omitempty"`
	Status                ScanStatus             `json:"status"`
	Analysis              *JobAnalysis           `json:"ai_analysis,omitempty"`
	Salary                *SalaryRecommendations `json:"salary_recommendations,omitempty"`
	SimilarScansCount     int                    `json:"similar_scans_count"`
	ConfidenceScore       float64                `json:"confidence_score"`
	ProcessingTimeSeconds float64                `json:"processing_time_seconds"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// Posting returns the job posting the scan was created from.
func (s *MarketScan) Posting() JobPosting {
	return JobPosting{Title: s.JobTitle, Description: s.JobDescription, HiringChallenges: s.HiringChallenges}
}

// MarketScanRequest is the input for creating a market scan.
type MarketScanRequest struct {
	ClientName       string `json:"client_name" validate:"required,max=200"`
	ClientEmail      string `json:"client_email" validate:"required,email"`
	CompanyDomain    string `json:"company_domain" validate:"required,max=255"`
	JobTitle         string `json:"job_title" validate:"required,max=500"`
	JobDescription   string `json:"job_description" validate:"required"`
	HiringChallenges string `json:"hiring_challenges,omitempty"`
}

// Normalize trims fields and reduces the company domain to a bare lowercase host.
func (r *MarketScanRequest) Normalize() {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.ClientEmail = strings.TrimSpace(r.ClientEmail)
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	r.HiringChallenges = strings.TrimSpace(r.HiringChallenges)
	r.CompanyDomain = NormalizeDomain(r.CompanyDomain)
}

// Validate normalizes and validates the request.
func (r *MarketScanRequest) Validate() error {
	r.Normalize()
	if err := validate().Struct(r); err != nil {
		return fmt.Errorf("invalid market scan request: %w", err)
	}
	return nil
}

// NormalizeDomain strips scheme, "www." prefix, and path from a company domain.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}
