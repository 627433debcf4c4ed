package telemetry

import (
	"fmt"
	"slices"
	"time"
)

// Config configures logging, tracing and metrics for the CLI and the shared
// library.
type Config struct {
	// ServiceName and ServiceVersion identify the process on spans.
	ServiceName    string
	ServiceVersion string

	// Environment is attached to spans, e.g. "embedded" for the library.
	Environment string

	Logging LoggingConfig
	Tracing TracingConfig
	Metrics MetricsConfig
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level        string // trace, debug, info, warn, error, fatal or disabled
	Format       string // console or json
	Output       string // stdout, stderr or a file path
	EnableCaller bool
	TimeFormat   string // console timestamps: unix, unixms or rfc3339
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled bool

	// Exporter is otlp, stdout or none. With none spans are sampled but
	// never exported.
	Exporter string

	// Endpoint, Headers and Insecure configure the OTLP gRPC exporter.
	Endpoint string
	Headers  map[string]string
	Insecure bool

	SamplingRate  float64
	ExportTimeout time.Duration
}

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Enabled collects in-process. The HTTP endpoint is served only when
	// ListenAddress is set.
	Enabled       bool
	ListenAddress string
	Path          string

	Namespace string

	// DefaultHistogramBuckets are load latency buckets in seconds.
	DefaultHistogramBuckets []float64
}

// DefaultConfig returns a default telemetry configuration. Tracing and the
// metrics endpoint are off; metrics are still collected in-process.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "mcuconf",
		ServiceVersion: "dev",
		Environment:    "development",
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			TimeFormat: "rfc3339",
		},
		Tracing: TracingConfig{
			Enabled:       false,
			Exporter:      "none",
			SamplingRate:  1.0,
			ExportTimeout: 10 * time.Second,
			Headers:       make(map[string]string),
			Insecure:      true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "mcuconf",
			DefaultHistogramBuckets: []float64{
				0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0,
			},
		},
	}
}

// LibraryConfig returns the configuration used inside the shared library:
// JSON logs on stderr at warn level, no tracing.
func LibraryConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = "embedded"
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "json"
	cfg.Logging.TimeFormat = "unixms"
	return cfg
}

// Validate rejects unknown levels, formats and exporters.
func (c *Config) Validate() error {
	switch {
	case c.ServiceName == "":
		return fmt.Errorf("service name is required")
	case c.ServiceVersion == "":
		return fmt.Errorf("service version is required")
	}

	if _, err := levelOf(c.Logging.Level); err != nil || c.Logging.Level == "" {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !slices.Contains([]string{"console", "json"}, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q (want console or json)", c.Logging.Format)
	}

	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("trace sampling rate %g outside [0, 1]", c.Tracing.SamplingRate)
	}
	if !c.Tracing.Enabled {
		return nil
	}
	if !slices.Contains([]string{"otlp", "stdout", "none"}, c.Tracing.Exporter) {
		return fmt.Errorf("invalid trace exporter: %q", c.Tracing.Exporter)
	}
	if c.Tracing.Exporter == "otlp" && c.Tracing.Endpoint == "" {
		return fmt.Errorf("otlp exporter needs an endpoint")
	}
	return nil
}
