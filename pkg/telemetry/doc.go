// Package telemetry provides observability for wingspan.
//
// # Overview
//
// The telemetry package implements structured logging, Prometheus metrics,
// OpenTelemetry distributed tracing, and health check endpoints. It gives
// visibility into pipeline execution while staying out of the hot path of
// feather scanning and wing evaluation.
//
// # Components
//
//   - logging: Structured logging with PII redaction
//   - metrics: Prometheus metrics for windows, feathers, wings, scoring, and the window store
//   - tracing: OpenTelemetry distributed tracing
//   - health: Health check endpoints
//
// # Usage
//
//	cfg := config.GetConfig()
//	logger, _ := logging.New(logging.Config{Level: cfg.Telemetry.Logging.Level})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//
//	collector.RecordWindow("w1", "completed", elapsed, recordCount)
//
//	ctx, span := tracer.Start(ctx, "wing.execute")
//	defer span.End()
//
// # PII Protection
//
// When the logger's RedactPII option is set, built-in patterns (API keys,
// emails, SSNs, card numbers, IPv4/IPv6 addresses, phone numbers, bearer
// tokens, passwords) and any configured patterns are applied to log
// attributes before they are written. With RedactPII unset nothing is redacted.
package telemetry
