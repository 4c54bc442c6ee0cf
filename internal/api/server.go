package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/socialme/contentflow/internal/common"
	"github.com/socialme/contentflow/internal/metrics"
	"github.com/socialme/contentflow/internal/workflow"
)

// Version is reported by GET /health.
const Version = "1.0.0"

type Server struct {
	router  chi.Router
	manager *workflow.Manager
	metrics *metrics.Metrics
}

func NewServer(manager *workflow.Manager, m *metrics.Metrics) (*Server, error) {
	if manager == nil {
		return nil, fmt.Errorf("workflow manager required")
	}
	if m == nil {
		m = metrics.New()
	}
	srv := &Server{
		router:  chi.NewRouter(),
		manager: manager,
		metrics: m,
	}
	srv.routes()
	common.Logger().Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(s.metrics.Middleware)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/metrics", s.metrics.Handler().ServeHTTP)
	s.router.Get("/v1/logs", s.handleLogs)

	s.router.Post("/v1/workflow/start", s.handleStart)
	s.router.Get("/v1/workflows", s.handleList)
	s.router.Route("/v1/workflow/{id}", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/topic", s.handleTopic)
		r.Post("/avatar", s.handleAvatar)
		r.Post("/sources", s.handleSources)
		r.Post("/tone", s.handleTone)
		r.Post("/style-samples", s.handleStyleSamples)
		r.Post("/style-sample-feedback", s.handleStyleFeedback)
		r.Post("/generate-article", s.handleGenerateArticle)
		r.Get("/article", s.handleGetArticle)
		r.Get("/article/download", s.handleDownload)
		r.Post("/validate-article", s.handleValidateArticle)
		r.Post("/approve-article", s.handleApproveArticle)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

// decodeJSON rejects unknown fields so request-shape mistakes fail loudly
// instead of being silently ignored.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusForError maps the workflow error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case workflow.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrWorkflowNotFound),
		errors.Is(err, workflow.ErrSampleNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrNoArticle):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err)
}
