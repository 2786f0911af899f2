// Package external is the boundary between weatherview and the third-party
// weather provider. Outbound HTTP goes through BaseClient, which applies a
// circuit breaker, request correlation headers and error mapping. Requests are
// issued exactly once: a failed lookup is reported to the caller, never retried.
package external

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"weatherview/internal/types"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures the circuit breaker guarding the provider.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker once exceeded.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// Interval resets the failure counts while closed.
	Interval time.Duration
}

// DefaultBreakerSettings returns sensible defaults for the weather provider.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		Interval:            60 * time.Second,
	}
}

// BaseClient wraps an *http.Client and a circuit breaker. Provider clients
// embed it to inherit consistent header injection and failure mapping.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// NewBaseClient creates a BaseClient with its own named circuit breaker.
func NewBaseClient(httpClient *http.Client, breakerName string, settings BreakerSettings, userAgent string) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return NewBaseClientWithBreaker(httpClient, cb, userAgent)
}

// NewBaseClientWithBreaker creates a BaseClient with a caller-provided circuit
// breaker, for tests that need to control the trip threshold.
func NewBaseClientWithBreaker(
	httpClient *http.Client,
	breaker *gobreaker.CircuitBreaker[*http.Response],
	userAgent string,
) *BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &BaseClient{
		client:    httpClient,
		breaker:   breaker,
		userAgent: userAgent,
	}
}

// BreakerState reports the current circuit breaker state ("closed",
// "half-open" or "open").
func (c *BaseClient) BreakerState() string {
	return c.breaker.State().String()
}

// Do executes the HTTP request once with:
//  1. X-Request-Id injection from the context
//  2. User-Agent header injection
//  3. Circuit breaker wrapping (5xx and 429 count as failures)
//  4. Error mapping to types.AppError
//
// Any response that reaches the provider, including 4xx and 5xx, is returned
// to the caller with a nil error so it can read the provider's message. The
// caller closes the body. Transport failures and an open breaker return an
// AppError and no response.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if requestID := types.GetRequestID(req.Context()); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})

	// A status-level failure still carries a response the caller can inspect.
	if resp != nil {
		return resp, nil
	}

	return nil, c.mapError(err)
}

// mapError translates transport-level failures into AppErrors.
func (c *BaseClient) mapError(err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			"circuit breaker is open; weather provider unavailable",
			err,
		)
	}

	return types.NewAppError(
		types.ErrCodeUpstreamUnavailable,
		"weather provider request failed",
		err,
	)
}
