package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML-facing shape of a scoring configuration file.
// global_defaults and case_overrides map feather_id to a weight in [0,1];
// thresholds override the default bucket boundaries.
type fileConfig struct {
	GlobalDefaults map[string]float64 `yaml:"global_defaults"`
	CaseOverrides  map[string]float64 `yaml:"case_overrides"`
	Thresholds     *struct {
		Possible  float64 `yaml:"possible"`
		Probable  float64 `yaml:"probable"`
		Confirmed float64 `yaml:"confirmed"`
	} `yaml:"thresholds"`
	FallbackWeight *float64 `yaml:"fallback_weight"`
}

// LoadConfig reads a scoring configuration file at path. A missing or
// malformed file is an error the caller should treat as "scoring
// configuration could not be loaded" and fall back to nil, recording
// ModeMatchCountRatio.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scoring config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing scoring config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if fc.GlobalDefaults != nil {
		cfg.GlobalDefaults = fc.GlobalDefaults
	}
	if fc.CaseOverrides != nil {
		cfg.CaseOverrides = fc.CaseOverrides
	}
	if fc.Thresholds != nil {
		cfg.Thresholds = Thresholds{
			Possible:  fc.Thresholds.Possible,
			Probable:  fc.Thresholds.Probable,
			Confirmed: fc.Thresholds.Confirmed,
		}
	}
	if fc.FallbackWeight != nil {
		cfg.FallbackWeight = *fc.FallbackWeight
	}

	return cfg, nil
}
