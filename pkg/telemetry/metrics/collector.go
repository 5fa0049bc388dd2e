package metrics

import (
	"time"

	"wingspan/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for every Prometheus metric wingspan
// exposes. It manages metric registration and provides a single recording
// surface. Neither twse nor ibce depends on prometheus or on this package;
// nothing in the engines or the CLI records into a Collector.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	window  *WindowMetrics
	feather *FeatherMetrics
	wing    *WingMetrics
	scoring *ScoringMetrics
	store   *StoreMetrics
}

// NewCollector creates a metrics collector bound to cfg and registry. If
// registry is nil, a fresh prometheus.Registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "wingspan"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "correlation"
	}
	if len(cfg.WindowDurationBuckets) == 0 {
		cfg.WindowDurationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0}
	}
	if len(cfg.RecordsPerWindowBuckets) == 0 {
		cfg.RecordsPerWindowBuckets = []float64{10, 100, 1000, 10000, 100000}
	}

	return &Collector{
		config:   cfg,
		registry: registry,
		window:   NewWindowMetrics(cfg, registry),
		feather:  NewFeatherMetrics(cfg, registry),
		wing:     NewWingMetrics(cfg, registry),
		scoring:  NewScoringMetrics(cfg, registry),
		store:    NewStoreMetrics(cfg, registry),
	}
}

// RecordWindow records the completion of one window or identity cluster.
func (c *Collector) RecordWindow(wingID, status string, duration time.Duration, recordCount int) {
	if !c.config.Enabled {
		return
	}
	c.window.RecordWindow(wingID, status, duration, recordCount)
}

// RecordScanned adds to the scanned-record count for a wing/feather pair.
func (c *Collector) RecordScanned(wingID, featherID string, count int64) {
	if !c.config.Enabled {
		return
	}
	c.window.RecordScanned(wingID, featherID, count)
}

// UpdateFeatherAvailability records whether a feather loaded successfully.
func (c *Collector) UpdateFeatherAvailability(featherID string, available bool) {
	if !c.config.Enabled {
		return
	}
	c.feather.UpdateAvailability(featherID, available)
}

// RecordFeatherLoad records the latency of opening a feather.
func (c *Collector) RecordFeatherLoad(featherID string, seconds float64) {
	if !c.config.Enabled {
		return
	}
	c.feather.RecordLoad(featherID, seconds)
}

// RecordFeatherError records a feather loader error.
func (c *Collector) RecordFeatherError(featherID, errorType string) {
	if !c.config.Enabled {
		return
	}
	c.feather.RecordError(featherID, errorType)
}

// RecordWingEvaluation records the completion of a wing's Execute pass.
func (c *Collector) RecordWingEvaluation(wingID, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.wing.RecordEvaluation(wingID, outcome, duration)
}

// RecordMatchEmitted records one emitted match and its score for wingID.
func (c *Collector) RecordMatchEmitted(wingID string, score float64) {
	if !c.config.Enabled {
		return
	}
	c.wing.RecordMatchEmitted(wingID)
	c.scoring.RecordScore(wingID, score)
}

// RecordMatchDiscarded records one discarded candidate match.
func (c *Collector) RecordMatchDiscarded(wingID, reason string) {
	if !c.config.Enabled {
		return
	}
	c.wing.RecordMatchDiscarded(wingID, reason)
}

// UpdateAverageScore sets the running average score for a wing.
func (c *Collector) UpdateAverageScore(wingID string, average float64) {
	if !c.config.Enabled {
		return
	}
	c.scoring.UpdateAverageScore(wingID, average)
}

// UpdateResidentEntries sets the in-memory window-store entry count for a
// wing.
func (c *Collector) UpdateResidentEntries(wingID string, count int) {
	if !c.config.Enabled {
		return
	}
	c.store.UpdateResidentEntries(wingID, count)
}

// RecordSpillEvent records a window spilling to the file-backed store.
func (c *Collector) RecordSpillEvent(wingID string) {
	if !c.config.Enabled {
		return
	}
	c.store.RecordSpillEvent(wingID)
}

// RecordStorageRetry records one results-writer retry attempt.
func (c *Collector) RecordStorageRetry(outcome string) {
	if !c.config.Enabled {
		return
	}
	c.store.RecordStorageRetry(outcome)
}

// Registry returns the Prometheus registry backing this collector, for
// wiring into an HTTP handler:
//
//	http.Handle(cfg.Path, promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
