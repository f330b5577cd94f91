// Package http exposes the service's operational surface: health,
// readiness, metrics, and a cached read endpoint for the current events.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geowatch/event-radar/internal/cache"
	"github.com/geowatch/event-radar/internal/domain"
)

const eventsCacheKey = "events:all"

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// EventLister provides the current canonical events for the read path.
type EventLister interface {
	Events() []domain.CanonicalEvent
}

// Server exposes health, readiness, metrics, and event-read endpoints.
type Server struct {
	httpServer *http.Server
	events     EventLister
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewServer creates the HTTP server. The events response is cached under
// an "events:" key, which the pipeline invalidates after each pass.
func NewServer(addr string, ready ReadinessChecker, events EventLister, c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		events:   events,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.HandleFunc("GET /events", s.handleEvents)
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
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleEvents serves the current events, cached until the TTL expires or
// the pipeline invalidates the "events:" prefix after a pass.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := cache.GetOrCompute(r.Context(), s.cache, eventsCacheKey, s.cacheTTL, func(context.Context) ([]byte, error) {
		return json.Marshal(s.events.Events())
	})
	if err != nil {
		s.logger.Error("events read failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // best-effort response
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
