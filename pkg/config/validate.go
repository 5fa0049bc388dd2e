package config

import (
	"fmt"
	"strings"

	"wingspan/pkg/correlation/selector"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every FieldError found while validating a
// Config.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate validates cfg, returning a ValidationError collecting every
// field-level problem found, or nil if cfg is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEngineType(cfg)...)
	errs = append(errs, validateFeathers(cfg)...)
	errs = append(errs, validateWings(cfg)...)
	errs = append(errs, validateOutput(cfg)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateEngineType(cfg *Config) []FieldError {
	switch cfg.EngineType {
	case selector.TypeTimeWindowScanning, selector.TypeIdentityBasedCorrelation:
		return nil
	case "":
		return []FieldError{{Field: "engine_type", Message: "is required"}}
	default:
		return []FieldError{{Field: "engine_type", Message: fmt.Sprintf("unrecognized value %q", cfg.EngineType)}}
	}
}

func validateFeathers(cfg *Config) []FieldError {
	var errs []FieldError
	seen := make(map[string]bool, len(cfg.Feathers))
	for i, f := range cfg.Feathers {
		path := fmt.Sprintf("feathers[%d]", i)
		if f.FeatherID == "" {
			errs = append(errs, FieldError{Field: path + ".feather_id", Message: "is required"})
			continue
		}
		if seen[f.FeatherID] {
			errs = append(errs, FieldError{Field: path + ".feather_id", Message: fmt.Sprintf("duplicate feather_id %q", f.FeatherID)})
		}
		seen[f.FeatherID] = true
		if f.DatabasePath == "" {
			errs = append(errs, FieldError{Field: path + ".database_path", Message: "is required"})
		}
	}
	return errs
}

func validateWings(cfg *Config) []FieldError {
	var errs []FieldError
	feathers := make(map[string]bool, len(cfg.Feathers))
	for _, f := range cfg.Feathers {
		feathers[f.FeatherID] = true
	}

	if len(cfg.Wings) == 0 {
		errs = append(errs, FieldError{Field: "wings", Message: "at least one wing is required"})
	}

	for i, w := range cfg.Wings {
		path := fmt.Sprintf("wings[%d]", i)
		if w.WingID == "" {
			errs = append(errs, FieldError{Field: path + ".wing_id", Message: "is required"})
		}
		if w.TimeWindow <= 0 {
			errs = append(errs, FieldError{Field: path + ".time_window", Message: "must be positive"})
		}
		if w.MinimumMatches < 0 {
			errs = append(errs, FieldError{Field: path + ".minimum_matches", Message: "must be non-negative"})
		}
		if len(w.Feathers) == 0 {
			errs = append(errs, FieldError{Field: path + ".feathers", Message: "at least one feather is required"})
		}
		for j, wf := range w.Feathers {
			wfPath := fmt.Sprintf("%s.feathers[%d]", path, j)
			if wf.FeatherID == "" {
				errs = append(errs, FieldError{Field: wfPath + ".feather_id", Message: "is required"})
				continue
			}
			if !feathers[wf.FeatherID] {
				errs = append(errs, FieldError{Field: wfPath + ".feather_id", Message: fmt.Sprintf("references unknown feather %q", wf.FeatherID)})
			}
			if wf.Weight < 0 || wf.Weight > 1 {
				errs = append(errs, FieldError{Field: wfPath + ".weight", Message: "must be in [0, 1]"})
			}
		}
	}
	return errs
}

func validateOutput(cfg *Config) []FieldError {
	if cfg.Output.ResultsDBPath == "" {
		return []FieldError{{Field: "output.results_db_path", Message: "is required"}}
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError
	switch cfg.Logging.Format {
	case "", "json", "text", "console":
	default:
		errs = append(errs, FieldError{Field: "telemetry.logging.format", Message: fmt.Sprintf("unrecognized value %q", cfg.Logging.Format)})
	}
	if cfg.Tracing.Enabled {
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be in [0, 1]"})
		}
		switch cfg.Tracing.Exporter {
		case "otlp", "jaeger", "zipkin":
		default:
			errs = append(errs, FieldError{Field: "telemetry.tracing.exporter", Message: fmt.Sprintf("unrecognized value %q", cfg.Tracing.Exporter)})
		}
	}
	return errs
}
