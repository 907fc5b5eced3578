package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"manet/pkg/errs"
)

// TestDefaultConfig verifies that the defaults are valid
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config is invalid: %v", err)
	}
	if cfg.Peaks.MinDistance != 37 {
		t.Errorf("Expected default min distance 37, got %f", cfg.Peaks.MinDistance)
	}
	if cfg.Peaks.ThresholdSteps != 90 {
		t.Errorf("Expected 90 threshold steps, got %d", cfg.Peaks.ThresholdSteps)
	}
}

// TestLoadConfigMissingFile verifies that a missing file yields the defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Overlay.MaskColor != DefaultConfig().Overlay.MaskColor {
		t.Errorf("Expected default mask color, got %s", cfg.Overlay.MaskColor)
	}
}

// TestSaveLoadRoundTrip verifies that saved values are read back
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Processing.NumCores = 3
	cfg.Patch.Size = []int{32, 48}
	cfg.Peaks.ThresholdMin = 0.2
	cfg.Output.Verbose = false

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if got.Processing.NumCores != 3 {
		t.Errorf("Expected 3 cores, got %d", got.Processing.NumCores)
	}
	if len(got.Patch.Size) != 2 || got.Patch.Size[1] != 48 {
		t.Errorf("Expected patch size [32 48], got %v", got.Patch.Size)
	}
	if got.Peaks.ThresholdMin != 0.2 {
		t.Errorf("Expected threshold min 0.2, got %f", got.Peaks.ThresholdMin)
	}
	if got.Output.Verbose {
		t.Errorf("Expected verbose false")
	}
}

// TestLoadConfigPartial verifies that unspecified keys keep their defaults
func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("peaks:\n  minDistance: 5\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Peaks.MinDistance != 5 {
		t.Errorf("Expected min distance 5, got %f", cfg.Peaks.MinDistance)
	}
	if cfg.Peaks.ThresholdMax != 1.0 {
		t.Errorf("Expected default threshold max 1.0, got %f", cfg.Peaks.ThresholdMax)
	}
}

// TestLoadConfigInvalid verifies that bad YAML and bad values are rejected
func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	badYAML := filepath.Join(dir, "bad.yaml")
	os.WriteFile(badYAML, []byte("peaks: [\n"), 0644)
	if _, err := LoadConfig(badYAML); err == nil {
		t.Error("Expected error for malformed YAML, got nil")
	}

	badValue := filepath.Join(dir, "value.yaml")
	os.WriteFile(badValue, []byte("peaks:\n  thresholdSteps: 0\n"), 0644)
	if _, err := LoadConfig(badValue); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

// TestCreateDefaultConfigFile verifies that the default file is written
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}
