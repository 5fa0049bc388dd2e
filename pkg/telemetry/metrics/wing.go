package metrics

import (
	"time"

	"wingspan/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// WingMetrics tracks metrics related to per-wing correlation outcomes:
// matches emitted, candidates discarded by validation, and duplicates
// suppressed.
//
// Metrics:
//   - wingspan_correlation_wing_evaluations_total: wing executions by wing and outcome
//   - wingspan_correlation_wing_evaluation_duration_seconds: per-wing Execute duration
//   - wingspan_correlation_matches_emitted_total: matches emitted, by wing
//   - wingspan_correlation_matches_discarded_total: candidates discarded, by wing and reason
type WingMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	matchesEmitted     *prometheus.CounterVec
	matchesDiscarded   *prometheus.CounterVec
}

// NewWingMetrics creates and registers wing metrics with registry.
func NewWingMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *WingMetrics {
	wm := &WingMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "wing_evaluations_total",
				Help:      "Total number of wing executions, by outcome",
			},
			[]string{"wing_id", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "wing_evaluation_duration_seconds",
				Help:      "Duration of a wing's full Execute pass",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"wing_id"},
		),

		matchesEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "matches_emitted_total",
				Help:      "Total number of correlation matches emitted, by wing",
			},
			[]string{"wing_id"},
		),

		matchesDiscarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "matches_discarded_total",
				Help:      "Total number of candidate matches discarded, by wing and reason",
			},
			[]string{"wing_id", "reason"},
		),
	}

	registry.MustRegister(wm.evaluationsTotal, wm.evaluationDuration, wm.matchesEmitted, wm.matchesDiscarded)

	return wm
}

// RecordEvaluation records the completion of a wing's Execute pass.
// outcome is "completed", "cancelled", or "error".
func (wm *WingMetrics) RecordEvaluation(wingID, outcome string, duration time.Duration) {
	wm.evaluationsTotal.WithLabelValues(wingID, outcome).Inc()
	wm.evaluationDuration.WithLabelValues(wingID).Observe(duration.Seconds())
}

// RecordMatchEmitted records one emitted CorrelationMatch for wingID.
func (wm *WingMetrics) RecordMatchEmitted(wingID string) {
	wm.matchesEmitted.WithLabelValues(wingID).Inc()
}

// RecordMatchDiscarded records one discarded candidate. reason is
// "validation_failed" or "duplicate".
func (wm *WingMetrics) RecordMatchDiscarded(wingID, reason string) {
	wm.matchesDiscarded.WithLabelValues(wingID, reason).Inc()
}
