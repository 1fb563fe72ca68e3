package config

// Default values for bot configuration.
const (
	DefaultBackendURL             = "http://localhost:8080"
	DefaultPollingIntervalSeconds = 2
	DefaultExcelThreshold         = 1000
	DefaultHTTPTimeoutSeconds     = 60
	DefaultTopWords               = 15
	DefaultMessageWidth           = 60

	// Column widths for text rendering.
	DefaultSenderColumnWidth = 22
	DefaultWordColumnWidth   = 18

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
