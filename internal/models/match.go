package models

import "time"

// SimilarityMatch is a historical scan retrieved as a semantic neighbor of a posting.
// It is a read-only view over a stored scan vector record.
type SimilarityMatch struct {
	ScanID                string         `json:"scan_id"`
	SimilarityScore       float64        `json:"similarity_score"`
	JobTitle              string         `json:"job_title"`
	CompanyDomain         string         `json:"company_domain"`
	ClientName            string         `json:"client_name"`
	RoleCategory          string         `json:"role_category"`
	ExperienceLevel       string         `json:"experience_level"`
	ComplexityScore       int            `json:"complexity_score"`
	RemoteWorkSuitability string         `json:"remote_work_suitability,omitempty"`
	MustHaveSkills        []string       `json:"must_have_skills"`
	RecommendedRegions    []string       `json:"recommended_regions"`
	CreatedAt             time.Time      `json:"created_at"`
	EmbeddingPreview      string         `json:"embedding_preview,omitempty"`
	Insights              *MatchInsights `json:"insights,omitempty"`
}

// MatchInsights explains why a neighbor was considered similar.
type MatchInsights struct {
	MatchReasons     []string         `json:"match_reasons"`
	KeySimilarities  []string         `json:"key_similarities"`
	RelevanceFactors RelevanceFactors `json:"relevance_factors"`
}

// RelevanceFactors are per-match scores in [0,1].
type RelevanceFactors struct {
	SimilarityScore float64 `json:"similarity_score"`
	RoleAlignment   float64 `json:"role_alignment"`
	ComplexityMatch float64 `json:"complexity_match"`
	RecencyScore    float64 `json:"recency_score"`
}

// ScanVectorMetadata is the context stored alongside a scan's vector.
type ScanVectorMetadata struct {
	CompanyDomain string
	ClientName    string
	CreatedAt     time.Time
}

// IndexStats summarizes the vector index.
type IndexStats struct {
	TotalVectorCount int `json:"total_vector_count"`
	Dimension        int `json:"dimension"`
}
