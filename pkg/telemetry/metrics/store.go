package metrics

import (
	"wingspan/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks the tiered window store's memory/spill behavior and
// the results writer's retry behavior.
//
// Metrics:
//   - wingspan_correlation_store_resident_entries: entries currently held in memory, by wing
//   - wingspan_correlation_spill_events_total: windows spilled to a file-backed store, by wing
//   - wingspan_correlation_storage_retries_total: results-writer retry attempts, by outcome
type StoreMetrics struct {
	residentEntries *prometheus.GaugeVec
	spillEvents     *prometheus.CounterVec
	storageRetries  *prometheus.CounterVec
}

// NewStoreMetrics creates and registers store metrics with registry.
func NewStoreMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StoreMetrics {
	sm := &StoreMetrics{
		residentEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_resident_entries",
				Help:      "Number of window entries currently held in memory, by wing",
			},
			[]string{"wing_id"},
		),

		spillEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "spill_events_total",
				Help:      "Total number of windows spilled to a file-backed store, by wing",
			},
			[]string{"wing_id"},
		),

		storageRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "storage_retries_total",
				Help:      "Total number of results-writer retry attempts, by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(sm.residentEntries, sm.spillEvents, sm.storageRetries)

	return sm
}

// UpdateResidentEntries sets the in-memory entry count for a wing.
func (sm *StoreMetrics) UpdateResidentEntries(wingID string, count int) {
	sm.residentEntries.WithLabelValues(wingID).Set(float64(count))
}

// RecordSpillEvent records a window spilling to the file-backed store.
func (sm *StoreMetrics) RecordSpillEvent(wingID string) {
	sm.spillEvents.WithLabelValues(wingID).Inc()
}

// RecordStorageRetry records one retry attempt. outcome is "succeeded" or
// "exhausted".
func (sm *StoreMetrics) RecordStorageRetry(outcome string) {
	sm.storageRetries.WithLabelValues(outcome).Inc()
}
