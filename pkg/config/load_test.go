package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testPipelineYAML = `
pipeline_name: chrome-execution
engine_type: time_window_scanning
feathers:
  - feather_id: prefetch
    artifact_type: Prefetch
    database_path: /evidence/prefetch.db
    table_name: records
  - feather_id: shimcache
    artifact_type: Shimcache
    database_path: /evidence/shimcache.db
    table_name: records
wings:
  - wing_id: w1
    wing_name: chrome launch
    time_window: 5m
    minimum_matches: 1
    anchor_priority: [Prefetch, Shimcache]
    feathers:
      - feather_id: prefetch
        weight: 0.6
        required: true
      - feather_id: shimcache
        weight: 0.4
output:
  results_db_path: /evidence/results.db
`

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTestConfig(t, testPipelineYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.EngineType != "time_window_scanning" {
		t.Errorf("EngineType = %q, want time_window_scanning", cfg.EngineType)
	}
	if len(cfg.Feathers) != 2 {
		t.Fatalf("got %d feathers, want 2", len(cfg.Feathers))
	}
	if cfg.Wings[0].TimeWindow.Minutes() != 5 {
		t.Errorf("TimeWindow = %v, want 5m", cfg.Wings[0].TimeWindow)
	}
	// defaults should have been applied
	if cfg.Parallelism.MaxWorkers != DefaultMaxWorkers {
		t.Errorf("MaxWorkers = %d, want default %d", cfg.Parallelism.MaxWorkers, DefaultMaxWorkers)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/pipeline.yaml"); err == nil {
		t.Fatal("LoadConfig returned nil error for a missing file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeTestConfig(t, "engine_type: [this is not a string")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig returned nil error for malformed YAML")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeTestConfig(t, testPipelineYAML)

	t.Setenv("WINGSPAN_PARALLELISM_MAX_WORKERS", "16")
	t.Setenv("WINGSPAN_STREAMING_FORCE_ENABLE", "true")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.Parallelism.MaxWorkers != 16 {
		t.Errorf("MaxWorkers = %d, want 16 from env override", cfg.Parallelism.MaxWorkers)
	}
	if !cfg.Streaming.ForceEnable {
		t.Error("Streaming.ForceEnable = false, want true from env override")
	}
}
