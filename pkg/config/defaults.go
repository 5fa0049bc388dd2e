package config

import (
	"runtime"
	"time"
)

// DefaultMaxWorkers is min(8, runtime.NumCPU()).
var DefaultMaxWorkers = min(8, runtime.NumCPU())

// Default values for configuration fields.
const (
	DefaultStreamingThreshold = 5000
	DefaultSoftLimitMB        = int64(512)

	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "json"
	DefaultLoggingBufferSize = 10000
	DefaultLoggingRedactPII  = true

	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "wingspan"
	DefaultMetricsSubsystem = "correlation"

	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingServiceName = "wingspan"
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultOTLPInsecure       = true
)

// ApplyDefaults sets zero-valued fields of cfg to their defaults. Idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Streaming.Threshold == 0 {
		cfg.Streaming.Threshold = DefaultStreamingThreshold
	}
	if cfg.Parallelism.MaxWorkers == 0 {
		cfg.Parallelism.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.Memory.SoftLimitMB == 0 {
		cfg.Memory.SoftLimitMB = DefaultSoftLimitMB
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Logging.BufferSize == 0 {
		cfg.Logging.BufferSize = DefaultLoggingBufferSize
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.OTLP.Timeout == 0 {
		cfg.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}
