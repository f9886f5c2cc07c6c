package search

import (
	"errors"
	"strings"

	"github.com/hyperjump/marketscan/internal/models"
)

// ErrEmptyQuery is returned for a query with no text.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Query is a hybrid scan search request.
type Query struct {
	Text            string              `json:"query"`
	Limit           int                 `json:"limit,omitempty"`
	Offset          int                 `json:"offset,omitempty"`
	KeywordEnabled  bool                `json:"keyword_enabled,omitempty"`
	SemanticEnabled bool                `json:"semantic_enabled,omitempty"`
	Fuzzy           bool                `json:"fuzzy,omitempty"`
	RoleCategory    models.RoleCategory `json:"role_category,omitempty"`
	// MinScore drops fused hits scoring below it.
	MinScore float64 `json:"min_score,omitempty"`
}

// Validate trims the text, clamps the limit and enables both backends when neither is set.
func (q *Query) Validate(defaultLimit, maxLimit int) error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return ErrEmptyQuery
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if !q.KeywordEnabled && !q.SemanticEnabled {
		q.KeywordEnabled = true
		q.SemanticEnabled = true
	}
	return nil
}

// Hit is one ranked scan.
type Hit struct {
	Scan          *models.MarketScan `json:"scan"`
	Score         float64            `json:"score"`
	KeywordScore  float64            `json:"keyword_score"`
	SemanticScore float64            `json:"semantic_score"`
	Rank          int                `json:"rank"`
	Snippet       string             `json:"snippet,omitempty"`
}

// Response is a page of fused hits.
type Response struct {
	Query     string `json:"query"`
	Hits      []*Hit `json:"hits"`
	Total     int    `json:"total"`
	QueryTime int64  `json:"query_time_ms"`
}
