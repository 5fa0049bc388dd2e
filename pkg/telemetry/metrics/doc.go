// Package metrics provides Prometheus metrics collection for wingspan's
// correlation engines.
//
// # Overview
//
// The metrics package instruments window/identity-cluster processing,
// feather availability and load latency, wing evaluation outcomes, match
// scoring, and the tiered window store's memory/spill behavior. Neither
// twse nor ibce imports it, and no command records into a Collector or
// serves its handler; callers record explicitly through the Collector.
//
// # Metrics Categories
//
//   - Window Metrics: windows/identity-clusters processed, duration, records scanned
//   - Feather Metrics: availability, load latency, loader errors
//   - Wing Metrics: evaluation outcome and duration, matches emitted/discarded
//   - Scoring Metrics: match score distribution and running average
//   - Store Metrics: resident window-store entries, spill events, storage retries
//
// # Usage
//
//	collector := metrics.NewCollector(cfg, registry)
//
//	collector.RecordWindow("w1", "completed", elapsed, recordCount)
//	collector.RecordScanned("w1", "prefetch", scannedCount)
//
//	collector.UpdateFeatherAvailability("prefetch", true)
//	collector.RecordFeatherLoad("prefetch", loadSeconds)
//
//	collector.RecordWingEvaluation("w1", "completed", elapsed)
//	collector.RecordMatchEmitted("w1", score)
//	collector.RecordMatchDiscarded("w1", "duplicate")
//
//	collector.RecordSpillEvent("w1")
//	collector.RecordStorageRetry("exhausted")
//
// # Prometheus Endpoint
//
// All metrics are exposed in standard Prometheus format via Collector.Handler.
// Names are prefixed with the configured namespace and subsystem (by default
// "wingspan" and "correlation"):
//
//	# HELP wingspan_correlation_windows_processed_total Total number of scanning windows or identity clusters processed, by wing and status
//	# TYPE wingspan_correlation_windows_processed_total counter
//	wingspan_correlation_windows_processed_total{wing_id="w1",status="completed"} 1234
//
// # Cardinality Management
//
// CardinalityLimiter bounds the number of distinct label values a metric
// will accept when a label is derived from input outside the pipeline
// configuration, such as identity filter values.
package metrics
