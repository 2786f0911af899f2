// Package main implements the lookup Lambda function.
//
// Each invocation looks up the current weather and the forecast for one city,
// applies the optional date and condition filters to the forecast, and returns
// both results together with the selectable forecast dates.
//
// Flow:
//  1. Load configuration and build the provider, store and recorder (cold start).
//  2. Validate the event.
//  3. Run Store.Lookup, bounded by the invocation deadline.
//  4. Filter the forecast and attach date options.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"weatherview/internal/config"
	"weatherview/internal/core"
	"weatherview/internal/external"
	"weatherview/internal/telemetry"
	"weatherview/internal/types"
	"weatherview/internal/weather"
)

// LookupEvent is the invocation payload.
type LookupEvent struct {
	City      string `json:"city" validate:"required,city"`
	Date      string `json:"date,omitempty" validate:"omitempty,isodate"`
	Condition string `json:"condition,omitempty" validate:"max=32"`
}

// LookupResponse is the invocation result. Forecast.Data.List holds only the
// entries that pass the filters; Total counts the unfiltered list.
type LookupResponse struct {
	Current     weather.RequestState[types.Snapshot] `json:"current"`
	IconURL     string                               `json:"icon_url,omitempty"`
	Forecast    weather.RequestState[types.Forecast] `json:"forecast"`
	Total       int                                  `json:"total"`
	DateOptions []weather.DateOption                 `json:"date_options"`
}

// Looker runs a combined lookup. Satisfied by *weather.Store.
type Looker interface {
	Lookup(ctx context.Context, city string) (weather.LookupResult, error)
}

// Handler holds the dependencies for the lookup Lambda handler.
type Handler struct {
	store       Looker
	validator   *core.Validator
	location    *time.Location
	labelLayout string
	logger      *slog.Logger
	now         func() time.Time
}

// Handle serves one invocation. Provider failures come back inside the
// response states; an error is returned only for an invalid event or when the
// invocation deadline passes first.
func (h *Handler) Handle(ctx context.Context, event LookupEvent) (*LookupResponse, error) {
	event.City = strings.TrimSpace(event.City)
	event.Date = strings.TrimSpace(event.Date)
	if err := h.validator.ValidateStruct(event); err != nil {
		return nil, err
	}

	filter := weather.Filter{Condition: event.Condition}
	if event.Date != "" {
		d, err := weather.ParseDate(event.Date)
		if err != nil {
			return nil, err
		}
		filter.Date = &d
	}

	result, err := h.store.Lookup(ctx, event.City)
	if err != nil {
		h.logger.ErrorContext(ctx, "lookup failed", "city", event.City, "error", err)
		return nil, err
	}

	resp := &LookupResponse{
		Current:     result.Current,
		Forecast:    result.Forecast,
		DateOptions: weather.GenerateDateOptions(h.now(), h.location, h.labelLayout),
	}
	if cur := result.Current.Data; cur != nil && len(cur.Weather) > 0 {
		resp.IconURL = weather.IconURL(cur.Weather[0].Icon)
	}
	if fc := result.Forecast.Data; fc != nil {
		resp.Total = len(fc.List)
		filtered := *fc
		filtered.List = weather.SelectFilteredForecast(fc.List, filter, h.location)
		resp.Forecast.Data = &filtered
	}

	h.logger.InfoContext(ctx, "lookup completed",
		"city", event.City,
		"current_status", string(resp.Current.Status),
		"forecast_status", string(resp.Forecast.Status),
		"matched", matched(resp.Forecast),
		"total", resp.Total,
	)
	return resp, nil
}

func matched(st weather.RequestState[types.Forecast]) int {
	if st.Data == nil {
		return 0
	}
	return len(st.Data.List)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("Lookup Lambda initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
	)

	recorder, err := telemetry.NewRecorder(context.Background(), cfg.Metrics, logger)
	if err != nil {
		logger.Error("Failed to create metrics recorder", "error", err)
		os.Exit(1)
	}

	provider := external.NewOpenWeatherClientFromConfig(cfg.Provider, logger)
	handler := &Handler{
		store: weather.NewStore(provider,
			weather.WithLogger(logger),
			weather.WithRecorder(recorder),
		),
		validator:   core.NewValidator(logger),
		location:    cfg.Display.Location(),
		labelLayout: cfg.Display.DateLabelLayout,
		logger:      logger,
		now:         time.Now,
	}

	// Local mode: read a JSON event from stdin instead of starting the Lambda runtime.
	// Usage: echo '{"city":"Oslo","condition":"Rain"}' | go run ./cmd/lookup-lambda
	if cfg.Environment == "local" {
		logger.Info("APP_ENV=local: reading lookup event from stdin")
		if err := runLocal(context.Background(), handler, os.Stdin, os.Stdout); err != nil {
			logger.Error("Local invocation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(handler.Handle)
}

// runLocal decodes one event from r, invokes the handler and writes the
// indented response to w.
func runLocal(ctx context.Context, h *Handler, r io.Reader, w io.Writer) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	if len(payload) == 0 {
		return fmt.Errorf("no input received on stdin")
	}

	var event LookupEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("parsing stdin as lookup event: %w", err)
	}

	resp, err := h.Handle(ctx, event)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
