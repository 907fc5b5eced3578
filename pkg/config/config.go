// Package config provides configuration loading and management for manet.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"manet/pkg/errs"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many cases are processed concurrently
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Patch extraction parameters
	Patch struct {
		// Size is the patch shape, one entry per image axis
		Size []int `yaml:"size"`

		// PadValue fills the part of a patch that lies outside the image
		PadValue float64 `yaml:"padValue"`
	} `yaml:"patch"`

	// Peak detection parameters
	Peaks struct {
		// MinDistance is the suppression radius in pixels.
		// 2 * 37 + 1 = 75 pixels is 15mm at 200 micron spacing.
		MinDistance float64 `yaml:"minDistance"`

		// ThresholdMin, ThresholdMax and ThresholdSteps define the evenly spaced
		// detection thresholds
		ThresholdMin   float64 `yaml:"thresholdMin"`
		ThresholdMax   float64 `yaml:"thresholdMax"`
		ThresholdSteps int     `yaml:"thresholdSteps"`
	} `yaml:"peaks"`

	// FROC evaluation parameters
	FROC struct {
		// Distance is the maximum distance in pixels between a candidate
		// and a ground-truth point to count as a hit
		Distance float64 `yaml:"distance"`
	} `yaml:"froc"`

	// Overlay rendering parameters
	Overlay struct {
		MaskColor  string  `yaml:"maskColor"`
		MaskAlpha  float64 `yaml:"maskAlpha"`
		BBoxColor  string  `yaml:"bboxColor"`
		PeakColor  string  `yaml:"peakColor"`
		PeakRadius int     `yaml:"peakRadius"`
	} `yaml:"overlay"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default patch parameters
	cfg.Patch.Size = []int{64, 64}
	cfg.Patch.PadValue = 0

	// Set default peak parameters
	cfg.Peaks.MinDistance = 37
	cfg.Peaks.ThresholdMin = 0.1
	cfg.Peaks.ThresholdMax = 1.0
	cfg.Peaks.ThresholdSteps = 90

	// Set default FROC parameters
	cfg.FROC.Distance = 37

	// Set default overlay parameters
	cfg.Overlay.MaskColor = "#ff0000"
	cfg.Overlay.MaskAlpha = 0
	cfg.Overlay.BBoxColor = "#0000ff"
	cfg.Overlay.PeakColor = "#00ff00"
	cfg.Overlay.PeakRadius = 3

	// Set default output parameters
	cfg.Output.Verbose = true

	return cfg
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Processing.NumCores < 1 {
		return errs.Invalid("processing.numCores must be at least 1, got %d", c.Processing.NumCores)
	}
	for _, s := range c.Patch.Size {
		if s <= 0 {
			return errs.Invalid("patch.size %v must be positive", c.Patch.Size)
		}
	}
	if c.Peaks.MinDistance < 0 {
		return errs.Invalid("peaks.minDistance must not be negative, got %g", c.Peaks.MinDistance)
	}
	if c.Peaks.ThresholdSteps < 1 {
		return errs.Invalid("peaks.thresholdSteps must be at least 1, got %d", c.Peaks.ThresholdSteps)
	}
	if c.Peaks.ThresholdMin > c.Peaks.ThresholdMax {
		return errs.Invalid("peaks.thresholdMin %g exceeds peaks.thresholdMax %g",
			c.Peaks.ThresholdMin, c.Peaks.ThresholdMax)
	}
	if c.FROC.Distance < 0 {
		return errs.Invalid("froc.distance must not be negative, got %g", c.FROC.Distance)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
