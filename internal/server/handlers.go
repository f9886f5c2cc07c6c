package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/marketscan/internal/export"
	"github.com/hyperjump/marketscan/internal/matching"
	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/search"
	"github.com/hyperjump/marketscan/internal/storage"
	"github.com/hyperjump/marketscan/internal/workflow"
)

const (
	maxListLimit   = 200
	exportCSVLimit = 1000
)

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req models.MarketScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("create scan request", zap.String("company_domain", req.CompanyDomain), zap.String("job_title", req.JobTitle))
	res, err := s.workflow.CreateScan(r.Context(), req)
	s.respondResult(w, http.StatusCreated, res, err)
}

func (s *Server) handleReanalyze(w http.ResponseWriter, r *http.Request) {
	res, err := s.workflow.Reanalyze(r.Context(), chi.URLParam(r, "id"))
	s.respondResult(w, http.StatusOK, res, err)
}

// respondResult writes a workflow result. A failed analysis still returns the stored scan.
func (s *Server) respondResult(w http.ResponseWriter, status int, res *workflow.Result, err error) {
	switch {
	case err == nil:
		s.respondJSON(w, status, res)
	case errors.Is(err, workflow.ErrInvalidRequest):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrScanNotFound):
		s.respondError(w, http.StatusNotFound, "scan not found")
	case res != nil && res.Scan != nil:
		s.logger.Error("scan analysis failed", zap.String("scan_id", res.Scan.ID), zap.Error(err))
		s.respondJSON(w, http.StatusBadGateway, map[string]interface{}{"error": err.Error(), "scan": res.Scan})
	default:
		s.logger.Error("scan processing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := storage.ListOptions{Status: models.ScanStatus(q.Get("status"))}
	var err error
	if opts.Offset, err = intParam(q, "offset", 0); err != nil || opts.Offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	if opts.Limit, err = intParam(q, "limit", storage.DefaultListLimit); err != nil || opts.Limit < 1 || opts.Limit > maxListLimit {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
		return
	}
	scans, err := s.workflow.ListScans(r.Context(), opts)
	if err != nil {
		s.logger.Error("list scans failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"scans":  scans,
		"offset": opts.Offset,
		"limit":  opts.Limit,
	})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := s.workflow.GetScan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondLookupError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, scan)
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete scan request", zap.String("scan_id", id))
	if err := s.workflow.DeleteScan(r.Context(), id); err != nil {
		s.respondLookupError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSimilarToScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	threshold, err := thresholdParam(q)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "threshold must be between 0 and 1")
		return
	}
	limit, err := intParam(q, "limit", 0)
	if err != nil || limit < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	id := chi.URLParam(r, "id")
	matches, confidence, err := s.workflow.Similar(r.Context(), id, threshold, limit)
	if err != nil {
		s.respondLookupError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, similarResponse{ScanID: id, Matches: matches, Confidence: confidence})
}

type similarRequest struct {
	JobTitle       string   `json:"job_title"`
	JobDescription string   `json:"job_description"`
	Threshold      *float64 `json:"threshold,omitempty"`
	MaxResults     int      `json:"max_results"`
	ExcludeID      string   `json:"exclude_id"`
	RoleCategory   string   `json:"role_category"`
	Experience     string   `json:"experience_level"`
	MinComplexity  int      `json:"min_complexity"`
	MaxComplexity  int      `json:"max_complexity"`
}

type similarResponse struct {
	ScanID     string                   `json:"scan_id,omitempty"`
	Matches    []models.SimilarityMatch `json:"similar_scans"`
	Confidence float64                  `json:"confidence_score"`
}

func (s *Server) handleSimilarToPosting(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.JobTitle) == "" && strings.TrimSpace(req.JobDescription) == "" {
		s.respondError(w, http.StatusBadRequest, "job_title or job_description is required")
		return
	}
	threshold := workflow.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if (req.Threshold != nil && (threshold < 0 || threshold > 1)) || req.MaxResults < 0 {
		s.respondError(w, http.StatusBadRequest, "threshold must be between 0 and 1 and max_results non-negative")
		return
	}
	posting := models.JobPosting{Title: req.JobTitle, Description: req.JobDescription}
	matches, confidence := s.workflow.SimilarToPosting(r.Context(), posting, matching.FindOptions{
		ExcludeID:  req.ExcludeID,
		Threshold:  threshold,
		MaxResults: req.MaxResults,
		Criteria: matching.Criteria{
			RoleCategory:    req.RoleCategory,
			ExperienceLevel: req.Experience,
			MinComplexity:   req.MinComplexity,
			MaxComplexity:   req.MaxComplexity,
		},
	})
	if matches == nil {
		matches = []models.SimilarityMatch{}
	}
	s.respondJSON(w, http.StatusOK, similarResponse{Matches: matches, Confidence: confidence})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &search.Query{
		Text:  strings.TrimSpace(q.Get("q")),
		Fuzzy: q.Get("fuzzy") == "true",
	}
	if query.Text == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	var err error
	if query.Limit, err = intParam(q, "limit", 0); err != nil || query.Limit < 0 || query.Limit > maxListLimit {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if query.Offset, err = intParam(q, "offset", 0); err != nil || query.Offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	if query.MinScore, err = floatParam(q, "min_score"); err != nil || query.MinScore < 0 || query.MinScore > 1 {
		s.respondError(w, http.StatusBadRequest, "min_score must be between 0 and 1")
		return
	}
	switch q.Get("mode") {
	case "", "hybrid":
	case "keyword":
		query.KeywordEnabled = true
	case "semantic":
		query.SemanticEnabled = true
	default:
		s.respondError(w, http.StatusBadRequest, "mode must be hybrid, keyword or semantic")
		return
	}
	if role := q.Get("role"); role != "" {
		rc, ok := parseRole(role)
		if !ok {
			s.respondError(w, http.StatusBadRequest, "unknown role category")
			return
		}
		query.RoleCategory = rc
	}
	s.logger.Debug("search request", zap.String("query", query.Text), zap.Int("limit", query.Limit))
	resp, err := s.workflow.Search(r.Context(), query)
	switch {
	case errors.Is(err, search.ErrNoBackend):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSalary(w http.ResponseWriter, r *http.Request) {
	var analysis models.JobAnalysis
	if err := json.NewDecoder(r.Body).Decode(&analysis); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recs, err := s.workflow.RecommendSalary(r.Context(), analysis)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, recs)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	role, ok := parseRole(chi.URLParam(r, "role"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "unknown role category")
		return
	}
	insights, err := s.workflow.MarketInsights(r.Context(), role)
	if err != nil {
		s.logger.Error("market insights failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, insights)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r.URL.Query(), "days", workflow.DefaultTrendLookbackDays)
	if err != nil || days < 1 {
		s.respondError(w, http.StatusBadRequest, "invalid days")
		return
	}
	trends, err := s.workflow.Trends(r.Context(), days)
	if err != nil {
		s.logger.Error("market trends failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, trends)
}

func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.matching.Stats(r.Context())
	if err != nil {
		s.logger.Error("index stats failed", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	scan, err := s.workflow.GetScan(ctx, id)
	if err != nil {
		s.respondLookupError(w, err)
		return
	}
	similar, _, err := s.workflow.Similar(ctx, id, workflow.DefaultThreshold, 0)
	if err != nil {
		s.respondLookupError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, scan, similar); err != nil {
		s.logger.Error("workbook export failed", zap.String("scan_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="market-scan-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{Limit: exportCSVLimit, Status: models.ScanStatus(r.URL.Query().Get("status"))}
	scans, err := s.workflow.ListScans(r.Context(), opts)
	if err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, scans); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="market-scans.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrScanNotFound) {
		s.respondError(w, http.StatusNotFound, "scan not found")
		return
	}
	s.logger.Error("scan lookup failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// parseRole accepts a role category name or its slug, e.g. "data-analyst".
func parseRole(raw string) (models.RoleCategory, bool) {
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return models.ParseRoleCategory(strings.ReplaceAll(raw, "-", " "))
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// thresholdParam reads a similarity threshold in [0,1]. An absent parameter
// selects the configured default.
func thresholdParam(q url.Values) (float64, error) {
	if q.Get("threshold") == "" {
		return workflow.DefaultThreshold, nil
	}
	v, err := strconv.ParseFloat(q.Get("threshold"), 64)
	if err != nil || v < 0 || v > 1 {
		return 0, errors.New("threshold must be between 0 and 1")
	}
	return v, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
