package weather

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"weatherview/internal/external"
	"weatherview/internal/telemetry"
	"weatherview/internal/types"
)

// slot holds one lookup's state and the generation of its newest issuance.
type slot[T any] struct {
	state      RequestState[T]
	generation uint64
}

// Store is the state container for the current-weather and forecast lookups.
// The two slots are independent; a lookup on one never touches the other.
//
// Every issuance bumps its slot's generation. When a lookup resolves after a
// newer one has been issued for the same slot, its result is discarded so the
// slot always reflects the most recently issued request.
type Store struct {
	provider external.WeatherProvider
	logger   *slog.Logger
	recorder telemetry.Recorder
	now      func() time.Time
	newID    func() string

	mu       sync.RWMutex
	current  slot[types.Snapshot]
	forecast slot[types.Forecast]

	subMu       sync.RWMutex
	subscribers map[uint64]func(Event)
	nextSubID   uint64

	inflight sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder for resolved lookups.
func WithRecorder(rec telemetry.Recorder) Option {
	return func(s *Store) {
		if rec != nil {
			s.recorder = rec
		}
	}
}

// WithClock overrides the time source used for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRequestIDFunc overrides request ID generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore creates a Store with both slots idle.
func NewStore(provider external.WeatherProvider, opts ...Option) *Store {
	s := &Store{
		provider:    provider,
		logger:      slog.Default(),
		recorder:    telemetry.NopRecorder{},
		now:         time.Now,
		newID:       uuid.NewString,
		subscribers: make(map[uint64]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}

	created := s.now()
	s.current.state = RequestState[types.Snapshot]{Status: StatusIdle, UpdatedAt: created}
	s.forecast.state = RequestState[types.Forecast]{Status: StatusIdle, UpdatedAt: created}
	return s
}

// RequestCurrentWeather starts a current-weather lookup for city. The slot is
// set to loading before the method returns; the returned channel receives the
// lookup's terminal state and is then closed. A blank city is a no-op and the
// channel yields the unchanged slot state.
func (s *Store) RequestCurrentWeather(ctx context.Context, city string) <-chan RequestState[types.Snapshot] {
	return issue(ctx, s, QueryCurrent, &s.current, city, s.provider.CurrentWeather)
}

// RequestForecast starts a forecast lookup for city with the same contract as
// RequestCurrentWeather.
func (s *Store) RequestForecast(ctx context.Context, city string) <-chan RequestState[types.Forecast] {
	return issue(ctx, s, QueryForecast, &s.forecast, city, s.provider.Forecast)
}

// Current returns a snapshot of the current-weather slot.
func (s *Store) Current() RequestState[types.Snapshot] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.state
}

// Forecast returns a snapshot of the forecast slot.
func (s *Store) Forecast() RequestState[types.Forecast] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forecast.state
}

// Subscribe registers fn for every slot transition. Callbacks run on the
// goroutine that caused the transition and must not block. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
		})
	}
}

// Wait blocks until every in-flight lookup has resolved or ctx is done.
func (s *Store) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.RLock()
	fns := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// issue runs one lookup against sl. It is a function rather than a method
// because Go methods cannot take type parameters.
func issue[T any](
	ctx context.Context,
	s *Store,
	q Query,
	sl *slot[T],
	city string,
	fetch func(context.Context, string) (*T, error),
) <-chan RequestState[T] {
	out := make(chan RequestState[T], 1)

	city = strings.TrimSpace(city)
	if city == "" {
		s.mu.RLock()
		unchanged := sl.state
		s.mu.RUnlock()
		out <- unchanged
		close(out)
		return out
	}

	requestID := s.newID()

	s.mu.Lock()
	sl.generation++
	gen := sl.generation
	sl.state = RequestState[T]{
		Status:    StatusLoading,
		City:      city,
		RequestID: requestID,
		UpdatedAt: s.now(),
	}
	loading := sl.state
	s.mu.Unlock()

	logger := s.logger.With("query", string(q), "city", city, "request_id", requestID)
	logger.DebugContext(ctx, "lookup issued", "generation", gen)
	s.publish(eventFor(q, loading))

	// Caller cancellation does not abort a lookup; the HTTP client timeout bounds it.
	callCtx := types.WithRequestID(context.WithoutCancel(ctx), requestID)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer close(out)

		start := time.Now()
		data, err := fetch(callCtx, city)
		elapsed := time.Since(start)

		final := RequestState[T]{
			City:      city,
			RequestID: requestID,
			UpdatedAt: s.now(),
		}
		switch {
		case err != nil:
			final.Status = StatusFailed
			final.Error = ErrorMessage(err)
		case data == nil:
			final.Status = StatusFailed
			final.Error = FallbackErrorMessage
		default:
			final.Status = StatusSucceeded
			final.Data = data
		}

		s.mu.Lock()
		latest := sl.generation == gen
		if latest {
			sl.state = final
		}
		s.mu.Unlock()

		outcome := telemetry.Outcome(final.Status)
		if latest {
			if final.Status == StatusFailed {
				logger.WarnContext(callCtx, "lookup failed", "error", err, "duration", elapsed)
			} else {
				logger.InfoContext(callCtx, "lookup succeeded", "duration", elapsed)
			}
			s.publish(eventFor(q, final))
		} else {
			outcome = telemetry.OutcomeSuperseded
			logger.InfoContext(callCtx, "discarding superseded lookup result",
				"generation", gen,
				"status", string(final.Status),
			)
		}
		s.recorder.RecordLookup(callCtx, string(q), outcome, elapsed)

		out <- final
	}()

	return out
}

// ErrorMessage returns the user-facing message for a failed lookup: the
// provider's message when the error carries one, otherwise
// FallbackErrorMessage.
func ErrorMessage(err error) string {
	var appErr *types.AppError
	if errors.As(err, &appErr) && strings.TrimSpace(appErr.Message) != "" {
		return appErr.Message
	}
	return FallbackErrorMessage
}
