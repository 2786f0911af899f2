// Package telemetry publishes lookup and API metrics. CloudWatchRecorder emits
// to AWS CloudWatch; NopRecorder is used when metrics are disabled.
package telemetry

import (
	"context"
	"time"
)

// Outcome is the terminal result of a provider lookup.
type Outcome string

const (
	OutcomeSucceeded  Outcome = "succeeded"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuperseded Outcome = "superseded"
)

// Recorder records lookup outcomes and HTTP request metrics.
type Recorder interface {
	// RecordLookup records one resolved provider lookup. query is "current"
	// or "forecast".
	RecordLookup(ctx context.Context, query string, outcome Outcome, duration time.Duration)

	// RecordRequest records API request latency and count.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// NopRecorder discards all metrics.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) RecordLookup(context.Context, string, Outcome, time.Duration) {}

func (NopRecorder) RecordRequest(string, string, string, time.Duration) {}
