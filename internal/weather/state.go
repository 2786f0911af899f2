// Package weather owns the lifecycle of the two provider lookups (current
// conditions and forecast) and the pure functions that derive filtered
// forecast views and date choices from provider data.
package weather

import (
	"time"

	"weatherview/internal/external"
)

// FallbackErrorMessage is the failure message used when nothing more specific
// is available.
const FallbackErrorMessage = external.FallbackErrorMessage

// Status is the lifecycle position of one lookup slot.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status ends a lookup.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Query identifies one of the two independent lookup slots.
type Query string

const (
	QueryCurrent  Query = "current"
	QueryForecast Query = "forecast"
)

// RequestState is the observable state of one lookup slot. Data is set only
// when Status is succeeded and Error only when Status is failed.
type RequestState[T any] struct {
	Status    Status    `json:"status"`
	Data      *T        `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	City      string    `json:"city,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event is delivered to subscribers on every slot transition.
type Event struct {
	Query     Query     `json:"query"`
	Status    Status    `json:"status"`
	City      string    `json:"city"`
	RequestID string    `json:"request_id"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

func eventFor[T any](q Query, st RequestState[T]) Event {
	return Event{
		Query:     q,
		Status:    st.Status,
		City:      st.City,
		RequestID: st.RequestID,
		Error:     st.Error,
		At:        st.UpdatedAt,
	}
}
