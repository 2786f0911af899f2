package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weatherview/internal/config"
	"weatherview/internal/types"
)

// FallbackErrorMessage is reported when a failure carries no provider message.
const FallbackErrorMessage = "Failed to fetch"

const (
	defaultOpenWeatherBaseURL = "https://api.openweathermap.org"
	openWeatherAPIPath        = "/data/2.5"
	maxResponseBodySize       = 4 << 20
)

// OpenWeatherClientConfig holds the settings for an OpenWeatherClient.
type OpenWeatherClientConfig struct {
	APIKey    types.SecretString
	BaseURL   string
	UserAgent string
	Breaker   BreakerSettings
	Logger    *slog.Logger
}

// OpenWeatherClient implements WeatherProvider against the OpenWeatherMap
// 2.5 REST API with metric units.
type OpenWeatherClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	logger  *slog.Logger
}

var _ WeatherProvider = (*OpenWeatherClient)(nil)

// NewOpenWeatherClient builds a client on top of httpClient, whose Timeout
// bounds every lookup.
func NewOpenWeatherClient(httpClient *http.Client, cfg OpenWeatherClientConfig) *OpenWeatherClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenWeatherBaseURL
	}
	settings := cfg.Breaker
	if settings == (BreakerSettings{}) {
		settings = DefaultBreakerSettings()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenWeatherClient{
		base:    NewBaseClient(httpClient, "openweathermap", settings, cfg.UserAgent),
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Name returns the provider name.
func (c *OpenWeatherClient) Name() string {
	return "OpenWeatherMap"
}

// BreakerState exposes the circuit breaker state for health probing.
func (c *OpenWeatherClient) BreakerState() string {
	return c.base.BreakerState()
}

// CurrentWeather fetches current conditions from the /weather endpoint.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, city string) (*types.Snapshot, error) {
	var snap types.Snapshot
	if err := c.get(ctx, "weather", city, &snap); err != nil {
		return nil, err
	}
	if !snap.Cod.OK() {
		return nil, providerError(snap.Cod, snap.Message)
	}
	return &snap, nil
}

// Forecast fetches the 5 day / 3 hour forecast from the /forecast endpoint.
func (c *OpenWeatherClient) Forecast(ctx context.Context, city string) (*types.Forecast, error) {
	var fc types.Forecast
	if err := c.get(ctx, "forecast", city, &fc); err != nil {
		return nil, err
	}
	if !fc.Cod.OK() {
		return nil, providerError(fc.Cod, fc.Message)
	}
	return &fc, nil
}

// errorEnvelope is the provider's failure body, e.g.
// {"cod":"404","message":"city not found"}.
type errorEnvelope struct {
	Cod     types.StatusCode      `json:"cod"`
	Message types.ProviderMessage `json:"message"`
}

// get issues GET {base}/data/2.5/{endpoint}?q=&appid=&units=metric and decodes
// a 2xx body into dst.
func (c *OpenWeatherClient) get(ctx context.Context, endpoint, city string, dst any) error {
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey.Unmask())
	params.Set("units", "metric")

	reqURL := fmt.Sprintf("%s%s/%s?%s", c.baseURL, openWeatherAPIPath, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, FallbackErrorMessage, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.base.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "weather provider request failed",
			"endpoint", endpoint,
			"city", city,
			"error", err,
		)
		return types.NewAppError(appErrorCode(err), FallbackErrorMessage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamUnavailable, FallbackErrorMessage,
			fmt.Errorf("reading response body: %w", err))
	}

	c.logger.DebugContext(ctx, "weather provider responded",
		"endpoint", endpoint,
		"city", city,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamMalformedPayload, FallbackErrorMessage,
			fmt.Errorf("decoding %s response: %w", endpoint, err))
	}
	return nil
}

// httpError builds the error for a non-2xx response, surfacing the provider's
// message when the body carries one.
func httpError(status int, body []byte) *types.AppError {
	message := FallbackErrorMessage
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && strings.TrimSpace(string(env.Message)) != "" {
		message = string(env.Message)
	}
	return types.NewAppErrorWithDetails(
		types.ErrCodeUpstreamHTTPError,
		message,
		fmt.Errorf("upstream returned %d", status),
		map[string]any{"http_status": status},
	)
}

// providerError builds the error for a 2xx response whose embedded code is
// not a success.
func providerError(code types.StatusCode, msg types.ProviderMessage) *types.AppError {
	message := string(msg)
	if strings.TrimSpace(message) == "" {
		message = FallbackErrorMessage
	}
	return types.NewAppErrorWithDetails(
		types.ErrCodeUpstreamProviderError,
		message,
		fmt.Errorf("provider returned cod %q", string(code)),
		map[string]any{"cod": string(code)},
	)
}

// appErrorCode keeps the code chosen by BaseClient when err is an AppError.
func appErrorCode(err error) types.ErrorCode {
	if appErr, ok := err.(*types.AppError); ok {
		return appErr.Code
	}
	return types.ErrCodeUpstreamUnavailable
}

// NewOpenWeatherClientFromConfig builds a client from the provider settings.
func NewOpenWeatherClientFromConfig(cfg config.ProviderConfig, logger *slog.Logger) *OpenWeatherClient {
	return NewOpenWeatherClient(&http.Client{Timeout: cfg.Timeout}, OpenWeatherClientConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})
}
