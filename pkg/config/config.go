package config

import (
	"time"

	"wingspan/pkg/correlation"
	"wingspan/pkg/feather"
)

// Config is the root pipeline configuration document.
type Config struct {
	// PipelineName labels this configuration for logging and the executions
	// table's pipeline_name column.
	PipelineName string `yaml:"pipeline_name"`

	// EngineType selects the correlation algorithm: "time_window_scanning"
	// or "identity_based". Required.
	EngineType string `yaml:"engine_type"`

	// Wings lists the correlation rules this pipeline evaluates.
	Wings []WingConfig `yaml:"wings"`

	// Feathers lists the artifact databases available to every wing.
	Feathers []FeatherConfig `yaml:"feathers"`

	Filters     FilterConfig     `yaml:"filters"`
	Streaming   StreamingConfig  `yaml:"streaming"`
	Parallelism ParallelismConfig `yaml:"parallelism"`
	Memory      MemoryConfig     `yaml:"memory"`
	Semantic    SemanticConfig   `yaml:"semantic"`
	Scoring     ScoringConfig    `yaml:"scoring"`
	Output      OutputConfig     `yaml:"output"`

	// MaxTimeRangeYears bounds the time span TWSE detects across a wing's
	// feathers; a larger span fails with TimeRangeTooLargeError. 0 means the
	// 20-year default (see EffectiveMaxTimeRangeYears).
	MaxTimeRangeYears int `yaml:"max_time_range_years"`

	// Telemetry contains logging, metrics, and tracing configuration,
	// modeled directly on the teacher's TelemetryConfig.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WingConfig is the YAML-facing form of a correlation.Wing. Durations and
// artifact lists are strings/slices here; ToWing converts it to the
// engine-facing type.
type WingConfig struct {
	WingID         string             `yaml:"wing_id"`
	WingName       string             `yaml:"wing_name"`
	Feathers       []WingFeatherConfig `yaml:"feathers"`
	TimeWindow     time.Duration      `yaml:"time_window"`
	MinimumMatches int                `yaml:"minimum_matches"`
	AnchorPriority []string           `yaml:"anchor_priority"`

	// MaxMatchesPerAnchor bounds emitted matches per anchor; 0 is unbounded.
	MaxMatchesPerAnchor int `yaml:"max_matches_per_anchor"`
}

// WingFeatherConfig is one entry of a wing's feathers[] list.
type WingFeatherConfig struct {
	FeatherID string  `yaml:"feather_id"`
	Weight    float64 `yaml:"weight"`
	Required  bool    `yaml:"required"`
}

// ToWing converts w into the engine-facing correlation.Wing.
func (w WingConfig) ToWing() *correlation.Wing {
	feathers := make([]correlation.WingFeather, 0, len(w.Feathers))
	for _, f := range w.Feathers {
		feathers = append(feathers, correlation.WingFeather{
			FeatherID: f.FeatherID,
			Weight:    f.Weight,
			Required:  f.Required,
		})
	}
	return &correlation.Wing{
		WingID:              w.WingID,
		WingName:            w.WingName,
		Feathers:            feathers,
		TimeWindow:          w.TimeWindow,
		MinimumMatches:      w.MinimumMatches,
		AnchorPriority:      w.AnchorPriority,
		MaxMatchesPerAnchor: w.MaxMatchesPerAnchor,
	}
}

// FeatherConfig is the YAML-facing form of a feather.FeatherRef.
type FeatherConfig struct {
	FeatherID    string            `yaml:"feather_id"`
	ArtifactType string            `yaml:"artifact_type"`
	DatabasePath string            `yaml:"database_path"`
	TableName    string            `yaml:"table_name"`
	FieldMapping map[string]string `yaml:"field_mapping"`
}

// ToFeatherRef converts f into the loader-facing feather.FeatherRef.
func (f FeatherConfig) ToFeatherRef() feather.FeatherRef {
	return feather.FeatherRef{
		FeatherID:    f.FeatherID,
		ArtifactType: f.ArtifactType,
		DatabasePath: f.DatabasePath,
		TableName:    f.TableName,
		FieldMapping: f.FieldMapping,
	}
}

// FilterConfig is the YAML form of correlation.FilterConfig: global
// time bounds and identity_filters[].
type FilterConfig struct {
	TimeStart       *time.Time `yaml:"time_start"`
	TimeEnd         *time.Time `yaml:"time_end"`
	IdentityFilters []string   `yaml:"identity_filters"`
	CaseSensitive   bool       `yaml:"case_sensitive"`
}

// ToFilterConfig converts f into the engine-facing correlation.FilterConfig.
func (f FilterConfig) ToFilterConfig() *correlation.FilterConfig {
	return &correlation.FilterConfig{
		TimeStart:       f.TimeStart,
		TimeEnd:         f.TimeEnd,
		IdentityFilters: f.IdentityFilters,
		CaseSensitive:   f.CaseSensitive,
	}
}

// StreamingConfig controls the streaming-mode heuristic.
type StreamingConfig struct {
	// ForceEnable bypasses the threshold check and streams results to
	// storage instead of buffering in memory; like the threshold, it has no
	// effect when no results writer is configured.
	ForceEnable bool `yaml:"force_enable"`

	// Threshold is the count of records scanned for a wing above which
	// streaming mode engages automatically. Default: 5000.
	Threshold int `yaml:"threshold"`
}

// ParallelismConfig controls the shared worker pool's size.
type ParallelismConfig struct {
	// MaxWorkers bounds the worker pool. Default: min(8, cores).
	MaxWorkers int `yaml:"max_workers"`
}

// MemoryConfig controls the tiered window store's spill threshold.
type MemoryConfig struct {
	// SoftLimitMB is the process memory footprint, in megabytes, above
	// which further windows queue to a file-backed spill store.
	SoftLimitMB int64 `yaml:"soft_limit_mb"`

	// SpillDir is the directory gob-encoded spill files are written under.
	// Default: os.TempDir().
	SpillDir string `yaml:"spill_dir"`
}

// SemanticConfig toggles the semantic mapper.
type SemanticConfig struct {
	Enabled bool `yaml:"enabled"`

	// RulesPath is the semantic alias catalog / rule file, loaded via
	// gopkg.in/yaml.v3 by pkg/semantic.
	RulesPath string `yaml:"rules_path"`
}

// ScoringConfig points at an optional weighted-scoring override file.
type ScoringConfig struct {
	ConfigPath string `yaml:"config_path"`
}

// OutputConfig controls where correlation results land.
type OutputConfig struct {
	ResultsDBPath string `yaml:"results_db_path"`
}

