// Package config defines the configuration structure for the weatherview
// service. Configuration is loaded once at process start and is immutable
// thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> struct defaults (Lowest)
//
// A missing required value or an invalid format fails LoadConfig, and the
// entry points exit before serving anything.
package config

import (
	"time"

	"weatherview/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the subset they need.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"weatherview"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server   ServerConfig
	Provider ProviderConfig
	Display  DisplayConfig
	Metrics  MetricsConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ProviderConfig holds the OpenWeatherMap connection settings.
type ProviderConfig struct {
	APIKey    SecretString  `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	BaseURL   string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org" validate:"required,url"`
	Timeout   time.Duration `envconfig:"OPENWEATHER_TIMEOUT" default:"10s" validate:"gt=0"`
	UserAgent string        `envconfig:"OPENWEATHER_USER_AGENT" default:"WeatherView/1.0"`
}

// DisplayConfig controls how forecast timestamps are bucketed into calendar
// days and how date options are labelled.
type DisplayConfig struct {
	DefaultCity     string `envconfig:"DEFAULT_CITY" default:"Ecatepec de Morelos"`
	Timezone        string `envconfig:"DISPLAY_TIMEZONE" default:"UTC" validate:"required,timezone"`
	DateLabelLayout string `envconfig:"DATE_LABEL_LAYOUT" default:"1/2/2006" validate:"required"`
}

// Location resolves Timezone. LoadConfig has already validated the name, so
// the UTC fallback only applies to hand-built configs.
func (d DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MetricsConfig holds CloudWatch publishing settings.
type MetricsConfig struct {
	Enabled   bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"WeatherView"`
	Region    string `envconfig:"AWS_REGION" default:"us-east-1"`
}

// BuildInfo holds build metadata injected at compile time via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their Go types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
