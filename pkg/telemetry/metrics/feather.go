package metrics

import (
	"wingspan/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// FeatherMetrics tracks metrics related to feather database loading and
// availability.
//
// Metrics:
//   - wingspan_correlation_feather_available: feather availability (1=loaded, 0=unavailable)
//   - wingspan_correlation_feather_load_seconds: feather open/query latency
//   - wingspan_correlation_feather_errors_total: feather loader errors by type
//   - wingspan_correlation_feather_loads_total: total feather load attempts
type FeatherMetrics struct {
	available *prometheus.GaugeVec
	loadTime  *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	loads     *prometheus.CounterVec
}

// NewFeatherMetrics creates and registers feather metrics with registry.
func NewFeatherMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FeatherMetrics {
	fm := &FeatherMetrics{
		available: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "feather_available",
				Help:      "Feather availability (1=loaded, 0=unavailable)",
			},
			[]string{"feather_id"},
		),

		loadTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "feather_load_seconds",
				Help:      "Time to open a feather and run its index/detect-columns pass",
				Buckets:   cfg.WindowDurationBuckets,
			},
			[]string{"feather_id"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "feather_errors_total",
				Help:      "Total number of feather loader errors by type",
			},
			[]string{"feather_id", "error_type"},
		),

		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "feather_loads_total",
				Help:      "Total number of feather load attempts",
			},
			[]string{"feather_id"},
		),
	}

	registry.MustRegister(fm.available, fm.loadTime, fm.errors, fm.loads)

	return fm
}

// UpdateAvailability records whether a feather loaded successfully.
func (fm *FeatherMetrics) UpdateAvailability(featherID string, available bool) {
	v := 0.0
	if available {
		v = 1.0
	}
	fm.available.WithLabelValues(featherID).Set(v)
}

// RecordLoad records the latency of opening a feather.
func (fm *FeatherMetrics) RecordLoad(featherID string, seconds float64) {
	fm.loads.WithLabelValues(featherID).Inc()
	fm.loadTime.WithLabelValues(featherID).Observe(seconds)
}

// RecordError records a feather loader error. Error types: "unavailable",
// "malformed", "missing_index".
func (fm *FeatherMetrics) RecordError(featherID, errorType string) {
	fm.errors.WithLabelValues(featherID, errorType).Inc()
}
