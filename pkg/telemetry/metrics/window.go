package metrics

import (
	"time"

	"wingspan/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// WindowMetrics tracks metrics related to scanning-window (TWSE) and
// identity-cluster (IBCE) processing, the unit of work both engines fan
// out to their worker pool.
//
// Metrics:
//   - wingspan_correlation_windows_processed_total: windows/identity-clusters completed, by wing and status
//   - wingspan_correlation_window_duration_seconds: per-window/cluster correlation duration
//   - wingspan_correlation_records_scanned_total: records scanned, by wing and feather
type WindowMetrics struct {
	windowsTotal    *prometheus.CounterVec
	windowDuration  *prometheus.HistogramVec
	recordsScanned  *prometheus.CounterVec
	recordsPerUnit  *prometheus.HistogramVec
}

// NewWindowMetrics creates and registers window metrics with registry.
func NewWindowMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *WindowMetrics {
	wm := &WindowMetrics{
		windowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "windows_processed_total",
				Help:      "Total number of scanning windows or identity clusters processed, by wing and status",
			},
			[]string{"wing_id", "status"},
		),

		windowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "window_duration_seconds",
				Help:      "Duration of a single window or identity cluster's correlation pass",
				Buckets:   cfg.WindowDurationBuckets,
			},
			[]string{"wing_id"},
		),

		recordsScanned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "records_scanned_total",
				Help:      "Total number of feather records scanned, by wing and feather",
			},
			[]string{"wing_id", "feather_id"},
		),

		recordsPerUnit: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "records_per_window",
				Help:      "Distribution of records scanned per window or identity cluster",
				Buckets:   cfg.RecordsPerWindowBuckets,
			},
			[]string{"wing_id"},
		),
	}

	registry.MustRegister(wm.windowsTotal, wm.windowDuration, wm.recordsScanned, wm.recordsPerUnit)

	return wm
}

// RecordWindow records the completion of a window or identity cluster.
func (wm *WindowMetrics) RecordWindow(wingID, status string, duration time.Duration, recordCount int) {
	wm.windowsTotal.WithLabelValues(wingID, status).Inc()
	wm.windowDuration.WithLabelValues(wingID).Observe(duration.Seconds())
	if recordCount > 0 {
		wm.recordsPerUnit.WithLabelValues(wingID).Observe(float64(recordCount))
	}
}

// RecordScanned adds to the scanned-record count for a wing/feather pair.
func (wm *WindowMetrics) RecordScanned(wingID, featherID string, count int64) {
	if count > 0 {
		wm.recordsScanned.WithLabelValues(wingID, featherID).Add(float64(count))
	}
}
