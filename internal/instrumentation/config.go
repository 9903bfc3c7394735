package instrumentation

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Exporter types.
const (
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Status values for metric labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultMetricInterval is the periodic-reader export interval.
const DefaultMetricInterval = 10 * time.Second

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: smartlabel)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Enabled determines if instrumentation is active (default: false)
	// Set SMARTLABEL_METRICS=true to periodically emit metrics on stdout.
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "stdout", "none" (default: "stdout")
	MetricsExporter string

	// Interval is the export interval of the periodic reader.
	Interval time.Duration
}

// DefaultConfig returns a Config with defaults taken from the
// environment.
func DefaultConfig() Config {
	return Config{
		ServiceName:     getEnvOrDefault("OTEL_SERVICE_NAME", "smartlabel"),
		ServiceVersion:  "unknown",
		Enabled:         getEnvBoolOrDefault("SMARTLABEL_METRICS", false),
		MetricsExporter: getEnvOrDefault("METRICS_EXPORTER", ExporterStdout),
		Interval:        DefaultMetricInterval,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.MetricsExporter {
	case ExporterStdout, ExporterNone, "":
		return nil
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: stdout, none", c.MetricsExporter)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
