package metrics

import (
	"wingspan/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ScoringMetrics tracks the weighted confidence score assigned to each
// emitted match.
//
// Metrics:
//   - wingspan_correlation_match_score: score distribution per match, by wing
//   - wingspan_correlation_match_score_average: running average score, by wing
type ScoringMetrics struct {
	scorePerMatch *prometheus.HistogramVec
	averageScore  *prometheus.GaugeVec
}

// NewScoringMetrics creates and registers scoring metrics with registry.
func NewScoringMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ScoringMetrics {
	sm := &ScoringMetrics{
		scorePerMatch: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "match_score",
				Help:      "Distribution of weighted confidence scores assigned to emitted matches",
				Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
			},
			[]string{"wing_id"},
		),

		averageScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "match_score_average",
				Help:      "Most recently computed average match score, by wing",
			},
			[]string{"wing_id"},
		),
	}

	registry.MustRegister(sm.scorePerMatch, sm.averageScore)

	return sm
}

// RecordScore records the score of a single emitted match.
func (sm *ScoringMetrics) RecordScore(wingID string, score float64) {
	sm.scorePerMatch.WithLabelValues(wingID).Observe(score)
}

// UpdateAverageScore sets the running average score for a wing.
func (sm *ScoringMetrics) UpdateAverageScore(wingID string, average float64) {
	sm.averageScore.WithLabelValues(wingID).Set(average)
}
