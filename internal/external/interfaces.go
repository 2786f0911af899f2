package external

import (
	"context"

	"weatherview/internal/types"
)

// WeatherProvider abstracts the two provider queries the weather store issues.
// Implementations return a *types.AppError on any failure; its Message is the
// text shown to users.
type WeatherProvider interface {
	// Name returns the provider identifier.
	Name() string

	// CurrentWeather fetches current conditions for a city.
	CurrentWeather(ctx context.Context, city string) (*types.Snapshot, error)

	// Forecast fetches the multi-day forecast for a city. Entries keep the
	// provider's order.
	Forecast(ctx context.Context, city string) (*types.Forecast, error)
}
