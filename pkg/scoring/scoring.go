package scoring

import (
	"wingspan/pkg/correlation"
)

// Mode records which algorithm produced a Result, surfaced so callers (and
// tests) can distinguish the normal weighted path from the degraded
// fallback.
type Mode string

const (
	ModeWeighted      Mode = "weighted"
	ModeMatchCountRatio Mode = "match_count_ratio"
)

// Bucket is the human-readable interpretation of a score.
type Bucket string

const (
	BucketLow       Bucket = "low"
	BucketPossible  Bucket = "possible"
	BucketProbable  Bucket = "probable"
	BucketConfirmed Bucket = "confirmed"
)

// Thresholds are the score bucket boundaries. Defaults are:
// [0,0.3) Low, [0.3,0.6) Possible, [0.6,0.8) Probable, [0.8,1.0] Confirmed.
type Thresholds struct {
	Possible  float64
	Probable  float64
	Confirmed float64
}

// DefaultThresholds returns the spec's default bucket boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Possible: 0.3, Probable: 0.6, Confirmed: 0.8}
}

func (t Thresholds) bucket(score float64) Bucket {
	switch {
	case score >= t.Confirmed:
		return BucketConfirmed
	case score >= t.Probable:
		return BucketProbable
	case score >= t.Possible:
		return BucketPossible
	default:
		return BucketLow
	}
}

// Config holds the scoring inputs below wing-local weights: a global
// default weight table, an optional case-specific override table, the
// interpretation thresholds, and the fallback weight used when a feather
// has no weight declared anywhere.
type Config struct {
	GlobalDefaults map[string]float64
	CaseOverrides  map[string]float64
	Thresholds     Thresholds
	FallbackWeight float64
}

// DefaultConfig returns a Config with spec defaults and no overrides.
func DefaultConfig() *Config {
	return &Config{
		GlobalDefaults: map[string]float64{},
		CaseOverrides:  map[string]float64{},
		Thresholds:     DefaultThresholds(),
		FallbackWeight: 0.1,
	}
}

// Result is the outcome of scoring one matched feather set against a wing.
type Result struct {
	Score     float64
	Bucket    Bucket
	Mode      Mode
	Breakdown map[string]correlation.FeatherContribution
}

// Score computes the weighted composite confidence score for matchedFeathers
// against wing. When cfg is nil (scoring configuration could not be
// loaded), it falls back to a pure match-count ratio and reports
// ModeMatchCountRatio in the result so callers can record the degradation.
func Score(wing *correlation.Wing, matchedFeathers map[string]bool, cfg *Config) Result {
	if cfg == nil {
		return scoreFallback(wing, matchedFeathers)
	}

	breakdown := make(map[string]correlation.FeatherContribution, len(wing.Feathers))
	var sumMatched, sumTotal float64
	for _, wf := range wing.Feathers {
		weight := effectiveWeight(wf, cfg)
		matched := matchedFeathers[wf.FeatherID]
		contribution := 0.0
		if matched {
			contribution = weight
			sumMatched += weight
		}
		sumTotal += weight
		breakdown[wf.FeatherID] = correlation.FeatherContribution{
			Matched:      matched,
			Weight:       weight,
			Contribution: contribution,
		}
	}

	score := 0.0
	if sumTotal > 0 {
		score = sumMatched / sumTotal
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return Result{
		Score:     score,
		Bucket:    cfg.Thresholds.bucket(score),
		Mode:      ModeWeighted,
		Breakdown: breakdown,
	}
}

// effectiveWeight resolves a feather's weight with strict precedence:
// wing-local > case-specific override > global-default > fallback.
func effectiveWeight(wf correlation.WingFeather, cfg *Config) float64 {
	if wf.Weight > 0 {
		return wf.Weight
	}
	if w, ok := cfg.CaseOverrides[wf.FeatherID]; ok {
		return w
	}
	if w, ok := cfg.GlobalDefaults[wf.FeatherID]; ok {
		return w
	}
	return cfg.FallbackWeight
}

// scoreFallback implements the degraded pure match-count ratio path used
// when scoring configuration cannot be loaded.
func scoreFallback(wing *correlation.Wing, matchedFeathers map[string]bool) Result {
	breakdown := make(map[string]correlation.FeatherContribution, len(wing.Feathers))
	matchedCount, total := 0, len(wing.Feathers)
	for _, wf := range wing.Feathers {
		matched := matchedFeathers[wf.FeatherID]
		if matched {
			matchedCount++
		}
		breakdown[wf.FeatherID] = correlation.FeatherContribution{
			Matched:      matched,
			Weight:       1,
			Contribution: boolToFloat(matched),
		}
	}
	score := 0.0
	if total > 0 {
		score = float64(matchedCount) / float64(total)
	}
	return Result{
		Score:     score,
		Bucket:    DefaultThresholds().bucket(score),
		Mode:      ModeMatchCountRatio,
		Breakdown: breakdown,
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
