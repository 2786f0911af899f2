package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricLookupCompleted = "LookupCompleted"
	MetricLookupLatency   = "LookupLatency"
	MetricAPILatency      = "APILatency"
	MetricAPIRequestCount = "APIRequestCount"

	// Dimension Keys
	DimQuery    = "Query"
	DimOutcome  = "Outcome"
	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "Status"

	// Metric Namespace
	MetricNamespace = "WeatherView"
)
