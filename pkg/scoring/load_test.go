package scoring

import (
	"os"
	"path/filepath"
	"testing"
)

const testScoringYAML = `
global_defaults:
  prefetch: 0.5
  shimcache: 0.3
  srum: 0.2
case_overrides:
  registry: 0.9
thresholds:
  possible: 0.25
  probable: 0.55
  confirmed: 0.85
fallback_weight: 0.05
`

func writeTestScoringConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scoring.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test scoring config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTestScoringConfig(t, testScoringYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.GlobalDefaults["prefetch"] != 0.5 {
		t.Errorf("GlobalDefaults[prefetch] = %v, want 0.5", cfg.GlobalDefaults["prefetch"])
	}
	if cfg.CaseOverrides["registry"] != 0.9 {
		t.Errorf("CaseOverrides[registry] = %v, want 0.9", cfg.CaseOverrides["registry"])
	}
	if cfg.Thresholds.Possible != 0.25 {
		t.Errorf("Thresholds.Possible = %v, want 0.25", cfg.Thresholds.Possible)
	}
	if cfg.FallbackWeight != 0.05 {
		t.Errorf("FallbackWeight = %v, want 0.05", cfg.FallbackWeight)
	}
}

func TestLoadConfig_PartialOverridesKeepDefaults(t *testing.T) {
	path := writeTestScoringConfig(t, "global_defaults:\n  prefetch: 0.7\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.GlobalDefaults["prefetch"] != 0.7 {
		t.Errorf("GlobalDefaults[prefetch] = %v, want 0.7", cfg.GlobalDefaults["prefetch"])
	}
	if cfg.Thresholds != DefaultThresholds() {
		t.Errorf("Thresholds = %v, want defaults when omitted", cfg.Thresholds)
	}
	if cfg.FallbackWeight != 0.1 {
		t.Errorf("FallbackWeight = %v, want default 0.1", cfg.FallbackWeight)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected error for missing scoring config file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeTestScoringConfig(t, "global_defaults: [this, is, not, a, map]\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid scoring config YAML")
	}
}
