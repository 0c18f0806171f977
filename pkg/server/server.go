// Package server exposes the analysis core over HTTP for the surrounding
// product: analyze a document, read back stored analyses, alerts and
// compliance rows, and compare two documents.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/finsight-labs/analysis-core/pkg/cache"
	"github.com/finsight-labs/analysis-core/pkg/document"
	"github.com/finsight-labs/analysis-core/pkg/orchestrator"
	"github.com/finsight-labs/analysis-core/pkg/store"
)

// Server holds the wired dependencies of the HTTP surface.
type Server struct {
	analyzer   *orchestrator.Analyzer
	analyses   *store.AnalysisStore
	alerts     *store.AlertStore
	checks     *store.ComplianceStore
	results    *cache.ResultCache
	comparator *document.Extractor
	logger     *slog.Logger
}

// New wires the server. The cache may be nil (disabled).
func New(analyzer *orchestrator.Analyzer, analyses *store.AnalysisStore, alerts *store.AlertStore, checks *store.ComplianceStore, results *cache.ResultCache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		analyzer:   analyzer,
		analyses:   analyses,
		alerts:     alerts,
		checks:     checks,
		results:    results,
		comparator: document.NewExtractor(),
		logger:     logger.With("component", "server"),
	}
}

// Routes returns the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents/analyze", s.handleAnalyze)
		r.Post("/documents/compare", s.handleCompare)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Get("/alerts", s.handleListAlerts)
		r.Post("/alerts/{id}/acknowledge", s.handleAcknowledgeAlert)
		r.Get("/compliance-checks", s.handleListComplianceChecks)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// analyzeRequest is the input contract from the ingestion collaborator.
// Unknown figure keys are ignored, not an error.
type analyzeRequest struct {
	DocumentID       string                 `json:"document_id,omitempty"`
	Text             string                 `json:"text"`
	DeclaredType     string                 `json:"declared_type,omitempty"`
	Figures          map[string]float64     `json:"figures,omitempty"`
	Expenses         map[string]float64     `json:"expenses,omitempty"`
	QuarterlyRevenue []float64              `json:"quarterly_revenue,omitempty"`
	LineItems        []float64              `json:"line_items,omitempty"`
	Transactions     []document.Transaction `json:"transactions,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	doc := document.Document{
		ID:           req.DocumentID,
		Text:         req.Text,
		DeclaredType: req.DeclaredType,
		Size:         int64(len(req.Text)),
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	figures := document.FromMap(req.Figures)
	figures.Expenses = req.Expenses
	figures.QuarterlyRevenue = req.QuarterlyRevenue
	figures.LineItems = req.LineItems
	figures.Transactions = req.Transactions

	key, keyErr := cache.Key(doc, figures)
	if keyErr == nil {
		if cached, hit, err := s.results.Get(r.Context(), key); err == nil && hit {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	assessment, err := s.analyzer.Analyze(r.Context(), doc, figures)
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyDocument) {
			writeError(w, http.StatusBadRequest, "EMPTY_DOCUMENT", "document has no extractable text")
			return
		}
		s.logger.Error("analysis failed", "document_id", doc.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "ANALYSIS_FAILED", "analysis failed")
		return
	}

	s.persist(r.Context(), assessment)
	if keyErr == nil {
		if err := s.results.Put(r.Context(), key, assessment); err != nil {
			s.logger.Warn("cache put failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, assessment)
}

// persist stores the assessment, its compliance rows, and any alert. A
// storage fault is logged, not surfaced: the caller already has the result.
func (s *Server) persist(ctx context.Context, a *orchestrator.OverallAssessment) {
	if s.analyses != nil {
		if err := s.analyses.Save(ctx, a); err != nil {
			s.logger.Error("persist analysis failed", "analysis_id", a.ID, "error", err)
		}
	}
	if s.checks != nil {
		if err := s.checks.SaveResults(ctx, a.ID, a.DocumentID, a.ComplianceResults); err != nil {
			s.logger.Error("persist compliance checks failed", "analysis_id", a.ID, "error", err)
		}
	}
	if s.alerts != nil {
		if _, err := s.alerts.RaiseFromAssessment(ctx, a); err != nil {
			s.logger.Error("raise alert failed", "analysis_id", a.ID, "error", err)
		}
	}
}

type compareRequest struct {
	TextA string `json:"text_a"`
	TextB string `json:"text_b"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	if req.TextA == "" || req.TextB == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TEXT", "both text_a and text_b are required")
		return
	}
	writeJSON(w, http.StatusOK, s.comparator.Compare(req.TextA, req.TextB))
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.analyses.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "analysis not found")
		return
	}
	if err != nil {
		s.logger.Error("get analysis failed", "analysis_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", "could not load analysis")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	alerts, err := s.alerts.List(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		s.logger.Error("list alerts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", "could not list alerts")
		return
	}
	if alerts == nil {
		alerts = []*store.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.alerts.Acknowledge(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "alert not found")
		return
	}
	if err != nil {
		s.logger.Error("acknowledge alert failed", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "UPDATE_FAILED", "could not acknowledge alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (s *Server) handleListComplianceChecks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.checks.List(r.Context(), store.Filter{
		Standard: r.URL.Query().Get("standard"),
		Result:   r.URL.Query().Get("result"),
		Limit:    limit,
	})
	if err != nil {
		s.logger.Error("list compliance checks failed", "error", err)
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", "could not list compliance checks")
		return
	}
	if rows == nil {
		rows = []*store.ComplianceRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}
