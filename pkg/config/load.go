package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads a pipeline configuration from a YAML file, applies
// defaults, validates it, and returns the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads cfg the same way LoadConfig does, then
// applies WINGSPAN_<SECTION>_<FIELD> environment variable overrides and
// re-validates.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies WINGSPAN_<SECTION>_<FIELD> overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("WINGSPAN_ENGINE_TYPE"); val != "" {
		cfg.EngineType = val
	}
	if val := os.Getenv("WINGSPAN_STREAMING_FORCE_ENABLE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Streaming.ForceEnable = b
		}
	}
	if val := os.Getenv("WINGSPAN_STREAMING_THRESHOLD"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Streaming.Threshold = i
		}
	}
	if val := os.Getenv("WINGSPAN_PARALLELISM_MAX_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Parallelism.MaxWorkers = i
		}
	}
	if val := os.Getenv("WINGSPAN_MEMORY_SOFT_LIMIT_MB"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Memory.SoftLimitMB = i
		}
	}
	if val := os.Getenv("WINGSPAN_MEMORY_SPILL_DIR"); val != "" {
		cfg.Memory.SpillDir = val
	}
	if val := os.Getenv("WINGSPAN_SEMANTIC_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Semantic.Enabled = b
		}
	}
	if val := os.Getenv("WINGSPAN_SCORING_CONFIG_PATH"); val != "" {
		cfg.Scoring.ConfigPath = val
	}
	if val := os.Getenv("WINGSPAN_OUTPUT_RESULTS_DB_PATH"); val != "" {
		cfg.Output.ResultsDBPath = val
	}

	if val := os.Getenv("WINGSPAN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("WINGSPAN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("WINGSPAN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("WINGSPAN_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("WINGSPAN_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("WINGSPAN_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("WINGSPAN_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
	if val := os.Getenv("WINGSPAN_TELEMETRY_TRACING_OTLP_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Telemetry.Tracing.OTLP.Timeout = d
		}
	}
}
