package config

import "time"

// TelemetryConfig contains configuration for observability, modeled
// directly on the teacher's TelemetryConfig.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration consumed by
// pkg/telemetry/logging.
type LoggingConfig struct {
	// Level is the minimum log level to emit ("debug", "info", "warn",
	// "error"). Default: "info".
	Level string `yaml:"level"`

	// Format controls the log output format ("json", "text", "console").
	// Default: "json".
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic PII redaction in logs (paths, usernames,
	// API keys that leak into progress/error fields). ApplyDefaults does not
	// set it, so it is false unless the config sets it.
	RedactPII bool `yaml:"redact_pii"`

	// BufferSize is the logger's buffer capacity; log writes are synchronous
	// and never queue in it. Default: 10000.
	BufferSize int `yaml:"buffer_size"`

	// RedactPatterns contains custom PII redaction patterns on top of the
	// built-in set.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom PII redaction pattern.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration consumed by
// pkg/telemetry/metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active. ApplyDefaults
	// does not set it, so it is false unless the config or the environment
	// sets it.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics".
	Path string `yaml:"path"`

	// Port is an optional separate port for metrics (0 = share the main
	// listener, if any). Default: 0.
	Port int `yaml:"port"`

	// Namespace is the metric name prefix. Default: "wingspan".
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name. Default: "correlation".
	Subsystem string `yaml:"subsystem"`

	// WindowDurationBuckets defines histogram buckets for per-window
	// correlation duration (seconds).
	WindowDurationBuckets []float64 `yaml:"window_duration_buckets"`

	// RecordsPerWindowBuckets defines histogram buckets for records
	// scanned per window.
	RecordsPerWindowBuckets []float64 `yaml:"records_per_window_buckets"`
}

// TracingConfig contains distributed tracing configuration consumed by
// pkg/telemetry/tracing.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active. Default: false.
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy ("always", "never", "ratio").
	// Default: "ratio".
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0). Only
	// used when Sampler is "ratio". Default: 0.1.
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use ("otlp", "jaeger",
	// "zipkin"). Default: "otlp".
	Exporter string `yaml:"exporter"`

	// Endpoint is the trace collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to every span.
	// Default: "wingspan".
	ServiceName string `yaml:"service_name"`

	OTLP   OTLPConfig   `yaml:"otlp"`
	Jaeger JaegerConfig `yaml:"jaeger"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection. ApplyDefaults does not
	// set it, so TLS stays on unless the config sets it.
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`
}

// JaegerConfig contains Jaeger exporter configuration.
type JaegerConfig struct {
	AgentHost string `yaml:"agent_host"`
	AgentPort int    `yaml:"agent_port"`
}
