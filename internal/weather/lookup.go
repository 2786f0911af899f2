package weather

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"weatherview/internal/types"
)

// LookupResult carries the terminal states of both lookups issued by Lookup.
type LookupResult struct {
	Current  RequestState[types.Snapshot] `json:"current"`
	Forecast RequestState[types.Forecast] `json:"forecast"`
}

// Lookup issues the current-weather and forecast lookups for city
// concurrently and waits for both to resolve. Provider failures are reported
// in the returned states, not as an error. An error is returned only for a
// blank city or when ctx ends before both lookups resolve; the lookups keep
// running and still update the store in that case.
func (s *Store) Lookup(ctx context.Context, city string) (LookupResult, error) {
	var result LookupResult

	city = strings.TrimSpace(city)
	if city == "" {
		return result, types.NewAppError(types.ErrCodeValidationBlankCity, "city must not be blank", nil)
	}

	currentCh := s.RequestCurrentWeather(ctx, city)
	forecastCh := s.RequestForecast(ctx, city)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := await(gctx, currentCh)
		result.Current = st
		return err
	})
	g.Go(func() error {
		st, err := await(gctx, forecastCh)
		result.Forecast = st
		return err
	})

	if err := g.Wait(); err != nil {
		return result, types.NewAppError(types.ErrCodeTimeout, "lookup did not complete in time", err)
	}
	return result, nil
}

func await[T any](ctx context.Context, ch <-chan RequestState[T]) (RequestState[T], error) {
	select {
	case st := <-ch:
		return st, nil
	case <-ctx.Done():
		return RequestState[T]{}, ctx.Err()
	}
}
