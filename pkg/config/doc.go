// Package config provides configuration management for wingspan.
//
// It handles loading, validating, and managing pipeline configuration from
// YAML files with environment variable overrides, in the style of the
// teacher's own config package: a type-safe Config struct, sensible
// defaults, and field-path validation errors.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("pipeline.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("pipeline.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention WINGSPAN_SECTION_FIELD,
// e.g. WINGSPAN_PARALLELISM_MAX_WORKERS, WINGSPAN_MEMORY_SOFT_LIMIT_MB,
// WINGSPAN_TELEMETRY_LOGGING_LEVEL. They always take precedence over the
// file.
//
// # Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton
//
// For application-wide access from cmd/wingspan, use Initialize/GetConfig.
// Tests should prefer NewTestConfig (builder_test.go) over the singleton.
package config
