// Package core provides the HTTP chassis for weatherview. It builds a chi
// router, applies the cross-cutting middleware (panic recovery, request IDs,
// logging, CORS, metrics and compression) and hosts the health endpoint.
// Domain handlers attach through V1RouteRegistrars.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"weatherview/internal/config"
)

// MetricsCollector defines the interface for recording API telemetry.
type MetricsCollector interface {
	// RecordRequest records API request metrics including latency and count.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server holds the dependencies of the HTTP API.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector

	// HealthProbes are checked by GET /health.
	HealthProbes []HealthProbe

	// V1RouteRegistrars mount domain routes under /v1. Populated by main.go so
	// core never imports handler packages.
	V1RouteRegistrars []func(chi.Router)

	router *chi.Mux
}

// NewServer initializes the server and its router. Routes are mounted
// separately with MountRoutes so tests can customize registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown runs the registered shutdown hooks in order. The first error is
// returned after all hooks have run.
func (s *Server) Shutdown(ctx context.Context, hooks ...func(context.Context) error) error {
	s.Logger.Info("server shutdown initiated")

	var firstErr error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			s.Logger.Error("shutdown hook failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.Logger.Info("server shutdown complete")
	return firstErr
}
