// Package server provides the HTTP API for market scans.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/marketscan/internal/config"
	"github.com/hyperjump/marketscan/internal/matching"
	"github.com/hyperjump/marketscan/internal/workflow"
	"github.com/hyperjump/marketscan/pkg/utils"
)

// Server is the HTTP server for the market scan API.
type Server struct {
	workflow *workflow.Workflow
	matching *matching.Service
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	wf *workflow.Workflow,
	svc *matching.Service,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		workflow: wf,
		matching: svc,
		config:   cfg,
		logger:   utils.OrNop(logger),
	}
}

// Router returns the API routes. Scan creation calls the analysis oracle, so the
// request timeout is generous.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5, "application/json", "text/csv"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/scans", func(r chi.Router) {
			r.Post("/", s.handleCreateScan)
			r.Get("/", s.handleListScans)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/{id}", s.handleGetScan)
			r.Delete("/{id}", s.handleDeleteScan)
			r.Post("/{id}/reanalyze", s.handleReanalyze)
			r.Get("/{id}/similar", s.handleSimilarToScan)
			r.Get("/{id}/export.xlsx", s.handleExportWorkbook)
		})
		r.Post("/similar", s.handleSimilarToPosting)
		r.Get("/search", s.handleSearch)
		r.Post("/salary", s.handleSalary)
		r.Get("/insights/{role}", s.handleInsights)
		r.Get("/trends", s.handleTrends)
		r.Get("/index/stats", s.handleIndexStats)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
