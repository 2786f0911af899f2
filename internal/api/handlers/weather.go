// Package handlers contains the HTTP handler implementations for the
// weatherview API.
//
// This file implements the weather handler:
//   - Lookup issuance (POST /v1/weather/current, POST /v1/weather/forecast)
//   - Slot state reads (GET /v1/weather/current, GET /v1/weather/forecast)
//   - Date choices (GET /v1/weather/forecast/dates)
//   - Condition choices (GET /v1/weather/forecast/conditions)
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"weatherview/internal/core"
	"weatherview/internal/types"
	"weatherview/internal/weather"
)

// WeatherStore defines the store contract for the weather handler. It is
// satisfied by *weather.Store and defined locally so tests can substitute it.
type WeatherStore interface {
	RequestCurrentWeather(ctx context.Context, city string) <-chan weather.RequestState[types.Snapshot]
	RequestForecast(ctx context.Context, city string) <-chan weather.RequestState[types.Forecast]
	Current() weather.RequestState[types.Snapshot]
	Forecast() weather.RequestState[types.Forecast]
}

// DisplaySettings controls default lookups and date presentation.
type DisplaySettings struct {
	DefaultCity     string
	Location        *time.Location
	DateLabelLayout string
}

// LookupRequest is the body of the POST endpoints. An omitted city falls back
// to the configured default; a blank city leaves the slot untouched. With Wait
// set the response carries the terminal state instead of the loading state.
type LookupRequest struct {
	City *string `json:"city" validate:"omitempty,max=100"`
	Wait bool    `json:"wait"`
}

// ForecastQuery holds the GET /forecast filters.
type ForecastQuery struct {
	Date      string `json:"date" validate:"omitempty,isodate"`
	Condition string `json:"condition" validate:"max=32"`
}

// CurrentView is the current-weather slot with the icon URL resolved.
type CurrentView struct {
	weather.RequestState[types.Snapshot]
	IconURL string `json:"icon_url,omitempty"`
}

// ForecastView is the forecast slot, with Data.List narrowed by the applied filters.
type ForecastView struct {
	weather.RequestState[types.Forecast]
	Filter appliedFilter `json:"filter"`
}

type appliedFilter struct {
	Date      string `json:"date,omitempty"`
	MatchDate string `json:"match_date,omitempty"`
	Condition string `json:"condition,omitempty"`
	Total     int    `json:"total"`
	Matched   int    `json:"matched"`
}

// WeatherHandler maps HTTP requests onto the weather store.
type WeatherHandler struct {
	store     WeatherStore
	validator *core.Validator
	logger    *slog.Logger
	display   DisplaySettings
	now       func() time.Time
}

// NewWeatherHandler creates a new WeatherHandler with the provided dependencies.
func NewWeatherHandler(
	store WeatherStore,
	val *core.Validator,
	display DisplaySettings,
	logger *slog.Logger,
) *WeatherHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if display.Location == nil {
		display.Location = time.UTC
	}
	return &WeatherHandler{
		store:     store,
		validator: val,
		logger:    logger,
		display:   display,
		now:       time.Now,
	}
}

// RegisterRoutes mounts the weather endpoints onto the mux.
func (h *WeatherHandler) RegisterRoutes(r chi.Router) {
	r.Post("/current", h.HandleRequestCurrent)
	r.Get("/current", h.HandleGetCurrent)
	r.Post("/forecast", h.HandleRequestForecast)
	r.Get("/forecast", h.HandleGetForecast)
	r.Get("/forecast/dates", h.HandleListDates)
	r.Get("/forecast/conditions", h.HandleListConditions)
}

// HandleRequestCurrent handles POST /v1/weather/current.
func (h *WeatherHandler) HandleRequestCurrent(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLookup(w, r)
	if !ok {
		return
	}
	city := h.resolveCity(req)
	logger := types.LoggerFromContext(r.Context(), h.logger)
	logger.DebugContext(r.Context(), "lookup requested", "query", string(weather.QueryCurrent), "city", city, "wait", req.Wait)

	ch := h.store.RequestCurrentWeather(r.Context(), city)
	state, status, err := respondState(r.Context(), ch, city, req.Wait, h.store.Current)
	if err != nil {
		logger.WarnContext(r.Context(), "lookup still pending at request deadline", "query", string(weather.QueryCurrent), "city", city)
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, status, core.APIResponse{Data: currentView(state)})
}

// HandleGetCurrent handles GET /v1/weather/current.
func (h *WeatherHandler) HandleGetCurrent(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: currentView(h.store.Current())})
}

// HandleRequestForecast handles POST /v1/weather/forecast.
func (h *WeatherHandler) HandleRequestForecast(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLookup(w, r)
	if !ok {
		return
	}
	city := h.resolveCity(req)
	logger := types.LoggerFromContext(r.Context(), h.logger)
	logger.DebugContext(r.Context(), "lookup requested", "query", string(weather.QueryForecast), "city", city, "wait", req.Wait)

	ch := h.store.RequestForecast(r.Context(), city)
	state, status, err := respondState(r.Context(), ch, city, req.Wait, h.store.Forecast)
	if err != nil {
		logger.WarnContext(r.Context(), "lookup still pending at request deadline", "query", string(weather.QueryForecast), "city", city)
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, status, core.APIResponse{Data: ForecastView{RequestState: state, Filter: countFilter(state, state)}})
}

// HandleGetForecast handles GET /v1/weather/forecast?date=YYYY-MM-DD&condition=Rain.
// The selected date matches entries bucketed under the following day.
func (h *WeatherHandler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := ForecastQuery{
		Date:      strings.TrimSpace(q.Get("date")),
		Condition: q.Get("condition"),
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		core.Error(w, r, err)
		return
	}

	filter := weather.Filter{Condition: query.Condition}
	var applied appliedFilter
	if query.Date != "" {
		d, err := weather.ParseDate(query.Date)
		if err != nil {
			core.Error(w, r, err)
			return
		}
		filter.Date = &d
		applied.Date = d.String()
		applied.MatchDate = weather.AddDays(d, 1).String()
	}
	applied.Condition = query.Condition

	state := h.store.Forecast()
	filtered := state
	if state.Data != nil {
		fc := *state.Data
		fc.List = weather.SelectFilteredForecast(state.Data.List, filter, h.display.Location)
		filtered.Data = &fc
	}

	counts := countFilter(state, filtered)
	applied.Total, applied.Matched = counts.Total, counts.Matched

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: ForecastView{RequestState: filtered, Filter: applied}})
}

// HandleListDates handles GET /v1/weather/forecast/dates.
func (h *WeatherHandler) HandleListDates(w http.ResponseWriter, r *http.Request) {
	opts := weather.GenerateDateOptions(h.now(), h.display.Location, h.display.DateLabelLayout)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: opts})
}

// HandleListConditions handles GET /v1/weather/forecast/conditions.
func (h *WeatherHandler) HandleListConditions(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: weather.KnownConditions})
}

func (h *WeatherHandler) decodeLookup(w http.ResponseWriter, r *http.Request) (LookupRequest, bool) {
	var req LookupRequest
	if r.ContentLength != 0 {
		if err := core.DecodeJSON(w, r, &req); err != nil {
			core.Error(w, r, err)
			return req, false
		}
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return req, false
	}
	return req, true
}

func (h *WeatherHandler) resolveCity(req LookupRequest) string {
	if req.City == nil {
		return h.display.DefaultCity
	}
	return *req.City
}

// respondState picks the state and status code for a POST response. A blank
// city yields the unchanged slot with 200. With wait the terminal state is
// returned with 200. Otherwise the slot as it stands (normally loading) is
// returned with 202.
func respondState[T any](
	ctx context.Context,
	ch <-chan weather.RequestState[T],
	city string,
	wait bool,
	snapshot func() weather.RequestState[T],
) (weather.RequestState[T], int, error) {
	if strings.TrimSpace(city) == "" {
		return <-ch, http.StatusOK, nil
	}
	if !wait {
		return snapshot(), http.StatusAccepted, nil
	}
	select {
	case st := <-ch:
		return st, http.StatusOK, nil
	case <-ctx.Done():
		return weather.RequestState[T]{}, 0, types.NewAppError(
			types.ErrCodeTimeout,
			"lookup is still pending; poll the GET endpoint for the result",
			ctx.Err(),
		)
	}
}

func currentView(st weather.RequestState[types.Snapshot]) CurrentView {
	view := CurrentView{RequestState: st}
	if st.Data != nil && len(st.Data.Weather) > 0 {
		view.IconURL = weather.IconURL(st.Data.Weather[0].Icon)
	}
	return view
}

func countFilter(all, matched weather.RequestState[types.Forecast]) appliedFilter {
	var f appliedFilter
	if all.Data != nil {
		f.Total = len(all.Data.List)
	}
	if matched.Data != nil {
		f.Matched = len(matched.Data.List)
	}
	return f
}
