package config

const (
	// Upstream configuration
	CatalogBaseURL = "https://dummyjson.com/products/"
	EnvPrefix      = "NETWORKER"

	// Server configuration
	MetricsPort = ":2112"

	// OpenTelemetry configuration
	OTLPEndpoint   = "localhost:4317"
	ServiceName    = "networker-fetch-example"
	ServiceVersion = "0.1.0"

	// Poll interval in seconds
	PollInterval = 5
)
