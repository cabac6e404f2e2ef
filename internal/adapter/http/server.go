package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/whiteroomlabs/snowpit-etl/internal/pipeline"
)

// StatusReporter exposes the pipeline's readiness and progress to the
// HTTP surface.
type StatusReporter interface {
	CheckReadiness(ctx context.Context) error
	Status() pipeline.Status
}

// Server exposes health, readiness, status, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	reporter   StatusReporter
	logger     *slog.Logger
}

// healthResponse is the /healthz payload. Pit counters are included so a
// plain health poll shows whether documents are actually moving.
type healthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	PitsProcessed int64  `json:"pits_processed"`
	ParseFailures int64  `json:"parse_failures"`
}

// readyResponse is the /readyz payload.
type readyResponse struct {
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	PitsProcessed int64  `json:"pits_processed"`
	LastPitID     string `json:"last_pit_id,omitempty"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /statusz, and
// /metrics routes.
func NewServer(addr string, reporter StatusReporter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reporter: reporter,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /statusz", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.reporter.Status()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		Service:       "snowpit-etl",
		PitsProcessed: st.PitsProcessed,
		ParseFailures: st.ParseFailures,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.reporter.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{
			Status: "not ready",
			Error:  err.Error(),
		})
		return
	}

	st := s.reporter.Status()
	writeJSON(w, http.StatusOK, readyResponse{
		Status:        "ready",
		PitsProcessed: st.PitsProcessed,
		LastPitID:     st.LastPitID,
	})
}

// handleStatus returns the full pipeline progress snapshot. Meant for
// operators eyeballing a stuck consumer, not for probes.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reporter.Status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
