// Package server exposes the detection pipeline over HTTP: activity
// ingestion, alert queries, and subject risk posture.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yairfalse/vakta/config"
	"github.com/yairfalse/vakta/ingest"
	"github.com/yairfalse/vakta/storage"
	"github.com/yairfalse/vakta/telemetry"
)

// Server is the HTTP front end
type Server struct {
	httpServer *http.Server
	logger     *telemetry.Logger
}

// New creates an HTTP server with routes and middleware wired
func New(cfg config.Server, ing *ingest.Ingestor, store storage.Storage) *Server {
	logger := telemetry.NewLogger("server")

	h := &handlers{ing: ing, store: store, logger: logger}

	router := chi.NewRouter()
	router.Use(requestLogging(logger))

	router.Post("/v1/activity", h.logActivity)
	router.Get("/v1/alerts", h.getAlerts)
	router.Get("/v1/subjects/{id}/risk", h.getSubjectRisk)
	router.Get("/healthz", h.health)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// ListenAndServe runs the server until Shutdown or failure
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting API server")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
