package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSizeMB = 50
	DefaultCleanupInterval = 1 * time.Hour

	// Processing defaults
	DefaultTaskTimeout = 120 * time.Second
	DefaultCacheTTL    = 60 * time.Minute
	DefaultTimezone    = "UTC"

	// Analytics defaults
	DefaultInputPath     = "result.json"
	DefaultTopWords      = 20
	DefaultTopSenders    = 10
	DefaultTopLengths    = 10
	DefaultHistogramBins = 30
	DefaultCloudMaxWords = 200
	DefaultBurstDays     = 5

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Daemon defaults
	DefaultPidFile = "chatstats-server.pid"
	DefaultLogFile = "chatstats-server.log"
)

// DefaultExcludedSenders - авторы, которые по умолчанию не попадают в статистику.
var DefaultExcludedSenders = []string{`ID-C`, "\u08e7+"}
