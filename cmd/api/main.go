// Package main is the entry point for the WeatherView API server.
//
// It loads configuration, builds the OpenWeatherMap client and the weather
// store, mounts the weather handler on the core chassis, and serves requests.
//
// Outside Lambda it runs as a standard HTTP server on the configured port.
// Inside Lambda the same router is served through a Function URL adapter.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambdaurl"
	"github.com/go-chi/chi/v5"

	"weatherview/internal/api/handlers"
	"weatherview/internal/config"
	"weatherview/internal/core"
	"weatherview/internal/external"
	"weatherview/internal/telemetry"
	"weatherview/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("weatherview API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	recorder, err := telemetry.NewRecorder(context.Background(), cfg.Metrics, logger)
	if err != nil {
		return fmt.Errorf("creating metrics recorder: %w", err)
	}

	client := external.NewOpenWeatherClientFromConfig(cfg.Provider, logger)

	a, err := buildApp(cfg, logger, client, recorder)
	if err != nil {
		return err
	}

	if isLambdaEnvironment() {
		return runLambda(a, logger)
	}

	return runHTTPServer(a, cfg, logger)
}

// app bundles the mounted server with the store whose in-flight lookups are
// drained on shutdown.
type app struct {
	srv   *core.Server
	store *weather.Store
}

// provider is the weather source plus the breaker state exposed to /health.
type provider interface {
	external.WeatherProvider
	core.BreakerStater
}

// buildApp wires the store, the weather handler and the health probe onto a
// new server and mounts its routes.
func buildApp(cfg *config.Config, logger *slog.Logger, p provider, recorder telemetry.Recorder) (*app, error) {
	store := weather.NewStore(p,
		weather.WithLogger(logger),
		weather.WithRecorder(recorder),
	)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = recorder
	srv.HealthProbes = append(srv.HealthProbes, core.NewBreakerProbe("weather_provider", p))

	weatherHandler := handlers.NewWeatherHandler(
		store,
		srv.Validator,
		handlers.DisplaySettings{
			DefaultCity:     cfg.Display.DefaultCity,
			Location:        cfg.Display.Location(),
			DateLabelLayout: cfg.Display.DateLabelLayout,
		},
		logger,
	)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Route("/weather", weatherHandler.RegisterRoutes)
	})

	srv.MountRoutes()
	return &app{srv: srv, store: store}, nil
}

// isLambdaEnvironment returns true if the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// runLambda serves the router behind a Lambda Function URL. lambdaurl.Start
// does not return.
func runLambda(a *app, logger *slog.Logger) error {
	logger.Info("starting in Lambda mode")
	lambdaurl.Start(a.srv.Handler())
	return nil
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(a *app, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           a.srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Channel to capture server errors from ListenAndServe.
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with a 10-second deadline.
	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Let lookups already issued settle so their metrics are published.
	if err := a.srv.Shutdown(ctx, a.store.Wait); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
