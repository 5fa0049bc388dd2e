package scoring

import (
	"testing"

	"wingspan/pkg/correlation"
)

func wing() *correlation.Wing {
	return &correlation.Wing{
		Feathers: []correlation.WingFeather{
			{FeatherID: "prefetch", Weight: 0.5},
			{FeatherID: "shimcache", Weight: 0.3},
			{FeatherID: "srum", Weight: 0.2},
		},
	}
}

func TestScore_Deterministic(t *testing.T) {
	w := wing()
	cfg := DefaultConfig()
	matched := map[string]bool{"prefetch": true, "shimcache": true}

	r1 := Score(w, matched, cfg)
	r2 := Score(w, matched, cfg)
	if r1.Score != r2.Score {
		t.Errorf("non-deterministic score: %v vs %v", r1.Score, r2.Score)
	}
	want := 0.8 / 1.0
	if r1.Score != want {
		t.Errorf("score = %v, want %v", r1.Score, want)
	}
	if r1.Bucket != BucketConfirmed {
		t.Errorf("bucket = %v, want confirmed", r1.Bucket)
	}
}

func TestScore_WingLocalOverridesGlobalDefault(t *testing.T) {
	w := &correlation.Wing{
		Feathers: []correlation.WingFeather{{FeatherID: "prefetch", Weight: 0.9}},
	}
	cfg := DefaultConfig()
	cfg.GlobalDefaults["prefetch"] = 0.1
	r := Score(w, map[string]bool{"prefetch": true}, cfg)
	if r.Breakdown["prefetch"].Weight != 0.9 {
		t.Errorf("expected wing-local weight to win, got %v", r.Breakdown["prefetch"].Weight)
	}
}

func TestScore_FallbackWeightWhenUnconfigured(t *testing.T) {
	w := &correlation.Wing{
		Feathers: []correlation.WingFeather{{FeatherID: "unknown_feather"}},
	}
	cfg := DefaultConfig()
	r := Score(w, map[string]bool{"unknown_feather": true}, cfg)
	if r.Breakdown["unknown_feather"].Weight != 0.1 {
		t.Errorf("expected fallback weight 0.1, got %v", r.Breakdown["unknown_feather"].Weight)
	}
}

func TestScore_Bounds(t *testing.T) {
	w := wing()
	cfg := DefaultConfig()
	r := Score(w, map[string]bool{}, cfg)
	if r.Score < 0 || r.Score > 1 {
		t.Errorf("score out of bounds: %v", r.Score)
	}
	if r.Score != 0 {
		t.Errorf("expected 0 score with no matches, got %v", r.Score)
	}
}

func TestScore_NilConfigFallsBackToMatchCountRatio(t *testing.T) {
	w := wing()
	r := Score(w, map[string]bool{"prefetch": true}, nil)
	if r.Mode != ModeMatchCountRatio {
		t.Errorf("expected fallback mode, got %v", r.Mode)
	}
	want := 1.0 / 3.0
	if r.Score != want {
		t.Errorf("score = %v, want %v", r.Score, want)
	}
}
