package config

import (
	"reflect"
	"testing"
)

func TestToWing(t *testing.T) {
	wc := WingConfig{
		WingID:         "w1",
		WingName:       "chrome execution",
		Feathers:       []WingFeatherConfig{{FeatherID: "prefetch", Weight: 0.6, Required: true}},
		TimeWindow:     300_000_000_000, // 5m, expressed in ns to avoid importing time here
		MinimumMatches: 1,
		AnchorPriority: []string{"Prefetch", "SRUM"},
	}

	w := wc.ToWing()
	if w.WingID != wc.WingID || w.WingName != wc.WingName {
		t.Fatalf("ToWing lost identity fields: %+v", w)
	}
	if len(w.Feathers) != 1 || w.Feathers[0].FeatherID != "prefetch" {
		t.Fatalf("ToWing did not carry feathers through: %+v", w.Feathers)
	}
	if w.MinimumMatches != 1 {
		t.Fatalf("MinimumMatches = %d, want 1", w.MinimumMatches)
	}
}

func TestToFeatherRef(t *testing.T) {
	fc := FeatherConfig{
		FeatherID:    "prefetch",
		ArtifactType: "Prefetch",
		DatabasePath: "/evidence/prefetch.db",
		TableName:    "records",
		FieldMapping: map[string]string{"timestamp": "last_executed"},
	}

	ref := fc.ToFeatherRef()
	if ref.FeatherID != fc.FeatherID || ref.DatabasePath != fc.DatabasePath {
		t.Fatalf("ToFeatherRef lost identity fields: %+v", ref)
	}
	if ref.FieldMapping["timestamp"] != "last_executed" {
		t.Fatalf("ToFeatherRef lost field mapping: %+v", ref.FieldMapping)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	ApplyDefaults(&cfg)

	if cfg.Streaming.Threshold != DefaultStreamingThreshold {
		t.Errorf("Streaming.Threshold = %d, want %d", cfg.Streaming.Threshold, DefaultStreamingThreshold)
	}
	if cfg.Parallelism.MaxWorkers != DefaultMaxWorkers {
		t.Errorf("Parallelism.MaxWorkers = %d, want %d", cfg.Parallelism.MaxWorkers, DefaultMaxWorkers)
	}
	if cfg.Memory.SoftLimitMB != DefaultSoftLimitMB {
		t.Errorf("Memory.SoftLimitMB = %d, want %d", cfg.Memory.SoftLimitMB, DefaultSoftLimitMB)
	}
	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("Telemetry.Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, DefaultLoggingLevel)
	}
	if cfg.Telemetry.Tracing.Sampler != DefaultTracingSampler {
		t.Errorf("Telemetry.Tracing.Sampler = %q, want %q", cfg.Telemetry.Tracing.Sampler, DefaultTracingSampler)
	}
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	cfg := DefaultTestConfig()
	before := *cfg
	ApplyDefaults(cfg)
	if !reflect.DeepEqual(*cfg, before) {
		t.Fatalf("ApplyDefaults is not idempotent:\nbefore=%+v\nafter=%+v", before, *cfg)
	}
}
