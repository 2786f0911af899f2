package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"weatherview/internal/types"
)

// healthCheckTimeout bounds the whole /health request. A probe still running
// at the deadline is reported as timed out.
const healthCheckTimeout = 2 * time.Second

// HealthProbe checks one dependency for GET /health.
type HealthProbe interface {
	// Name identifies the component in the response, e.g. "weather_provider".
	Name() string
	// Check returns nil when the dependency is usable. It must honor ctx.
	Check(ctx context.Context) error
}

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every probe concurrently and answers 200 when all report
// healthy, 503 otherwise. Mounted at GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	probes := s.HealthProbes
	if len(probes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	// Each probe owns one buffered slot so late finishers never block.
	results := make([]chan error, len(probes))
	for i, probe := range probes {
		results[i] = make(chan error, 1)
		go func(p HealthProbe, out chan<- error) {
			defer func() {
				if rvr := recover(); rvr != nil {
					out <- fmt.Errorf("probe panicked: %v", rvr)
				}
			}()
			out <- p.Check(ctx)
		}(probe, results[i])
	}

	resp := healthResponse{Status: "healthy", Components: make(map[string]componentStatus, len(probes))}
	for i, probe := range probes {
		var err error
		select {
		case err = <-results[i]:
		case <-ctx.Done():
			err = fmt.Errorf("health check timed out")
		}

		if err != nil {
			resp.Status = "unhealthy"
			resp.Components[probe.Name()] = componentStatus{Status: "unhealthy", Message: err.Error()}
			continue
		}
		resp.Components[probe.Name()] = componentStatus{Status: "healthy"}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
		types.LoggerFromContext(r.Context(), s.Logger).WarnContext(r.Context(), "health check failed", "components", resp.Components)
	}
	JSON(w, r, status, resp)
}

// BreakerStater reports the state of a circuit breaker.
type BreakerStater interface {
	BreakerState() string
}

// BreakerProbe reports a dependency unhealthy while its circuit breaker is open.
type BreakerProbe struct {
	name   string
	source BreakerStater
}

// NewBreakerProbe creates a probe named name over source.
func NewBreakerProbe(name string, source BreakerStater) *BreakerProbe {
	return &BreakerProbe{name: name, source: source}
}

// Name returns the probe name.
func (p *BreakerProbe) Name() string {
	return p.name
}

// Check fails when the breaker is open.
func (p *BreakerProbe) Check(ctx context.Context) error {
	if state := p.source.BreakerState(); state == "open" {
		return fmt.Errorf("circuit breaker %s", state)
	}
	return ctx.Err()
}
