package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func Benchmark_Collector_RecordWindow(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordWindow("w1", "completed", time.Second, 1500)
	}
}

func Benchmark_Collector_RecordWindow_Parallel(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordWindow("w1", "completed", time.Second, 1500)
		}
	})
}

func Benchmark_Collector_UpdateFeatherAvailability(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.UpdateFeatherAvailability("prefetch", true)
	}
}

func Benchmark_Collector_RecordFeatherLoad(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordFeatherLoad("prefetch", 0.95)
	}
}

func Benchmark_Collector_RecordFeatherError(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordFeatherError("prefetch", "rate_limit")
	}
}

func Benchmark_Collector_RecordWingEvaluation(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordWingEvaluation("w1", "completed", 2*time.Millisecond)
	}
}

func Benchmark_Collector_RecordMatchEmitted(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordMatchEmitted("w1", 0.8)
	}
}

func Benchmark_WindowMetrics_RecordWindow(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	wm := NewWindowMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wm.RecordWindow("w1", "completed", time.Second, 1500)
	}
}

func Benchmark_WindowMetrics_RecordScanned(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	wm := NewWindowMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wm.RecordScanned("w1", "prefetch", 1000)
	}
}

func Benchmark_FeatherMetrics_UpdateAvailability(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	fm := NewFeatherMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fm.UpdateAvailability("prefetch", true)
	}
}

func Benchmark_WingMetrics_RecordEvaluation(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	wm := NewWingMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wm.RecordEvaluation("w1", "completed", 2*time.Millisecond)
	}
}

func Benchmark_ScoringMetrics_RecordScore(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	sm := NewScoringMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sm.RecordScore("w1", 0.8)
	}
}

func Benchmark_StoreMetrics_RecordSpillEvent(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	sm := NewStoreMetrics(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sm.RecordSpillEvent("w1")
	}
}

func Benchmark_CardinalityLimiter_Allow(b *testing.B) {
	limiter := NewCardinalityLimiter(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("label1")
	}
}

func Benchmark_CardinalityLimiter_Allow_New(b *testing.B) {
	limiter := NewCardinalityLimiter(100000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("label" + string(rune(i)))
	}
}

func Benchmark_Collector_Disabled(b *testing.B) {
	cfg := testConfig()
	cfg.Enabled = false
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordWindow("w1", "completed", time.Second, 1500)
	}
}

func Benchmark_Collector_ManyLabels(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	wings := []string{"w1", "w2", "w3", "w4"}
	statuses := []string{"completed", "cancelled", "error"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wing := wings[i%len(wings)]
		status := statuses[i%len(statuses)]
		collector.RecordWindow(wing, status, time.Second, 1500)
	}
}

func Benchmark_Collector_AllMetrics(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordWindow("w1", "completed", time.Second, 1500)
		collector.UpdateFeatherAvailability("prefetch", true)
		collector.RecordWingEvaluation("w1", "completed", 2*time.Millisecond)
		collector.RecordMatchEmitted("w1", 0.8)
	}
}
