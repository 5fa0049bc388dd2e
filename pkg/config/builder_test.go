package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in
// tests. It starts from valid defaults and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig returns a ConfigBuilder seeded with a minimal, valid
// time-window-scanning pipeline over one feather and one wing.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{
		PipelineName: "test-pipeline",
		EngineType:   "time_window_scanning",
		Feathers: []FeatherConfig{
			{FeatherID: "prefetch", ArtifactType: "Prefetch", DatabasePath: "testdata/prefetch.db", TableName: "records"},
		},
		Wings: []WingConfig{
			{
				WingID:         "w1",
				WingName:       "test wing",
				Feathers:       []WingFeatherConfig{{FeatherID: "prefetch", Weight: 1, Required: true}},
				TimeWindow:     5 * time.Minute,
				MinimumMatches: 0,
				AnchorPriority: []string{"Prefetch"},
			},
		},
		Output: OutputConfig{ResultsDBPath: "testdata/results.db"},
	}
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithEngineType overrides the engine_type.
func (b *ConfigBuilder) WithEngineType(engineType string) *ConfigBuilder {
	b.cfg.EngineType = engineType
	return b
}

// WithFeather appends a feather to the configuration.
func (b *ConfigBuilder) WithFeather(f FeatherConfig) *ConfigBuilder {
	b.cfg.Feathers = append(b.cfg.Feathers, f)
	return b
}

// WithWing appends a wing to the configuration.
func (b *ConfigBuilder) WithWing(w WingConfig) *ConfigBuilder {
	b.cfg.Wings = append(b.cfg.Wings, w)
	return b
}

// WithStreaming overrides the streaming section.
func (b *ConfigBuilder) WithStreaming(forceEnable bool, threshold int) *ConfigBuilder {
	b.cfg.Streaming.ForceEnable = forceEnable
	b.cfg.Streaming.Threshold = threshold
	return b
}

// WithMaxWorkers overrides parallelism.max_workers.
func (b *ConfigBuilder) WithMaxWorkers(n int) *ConfigBuilder {
	b.cfg.Parallelism.MaxWorkers = n
	return b
}

// WithSoftLimitMB overrides memory.soft_limit_mb.
func (b *ConfigBuilder) WithSoftLimitMB(mb int64) *ConfigBuilder {
	b.cfg.Memory.SoftLimitMB = mb
	return b
}

// WithResultsDBPath overrides output.results_db_path.
func (b *ConfigBuilder) WithResultsDBPath(path string) *ConfigBuilder {
	b.cfg.Output.ResultsDBPath = path
	return b
}

// WithLoggingLevel overrides telemetry.logging.level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithTracingEnabled overrides telemetry.tracing.enabled/endpoint.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}

// DefaultTestConfig returns a ready-to-use valid Config.
func DefaultTestConfig() *Config {
	return NewTestConfig().Build()
}
