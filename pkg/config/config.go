// Package config provides configuration loading and management for rasterflow.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rasterflow/internal/errors"
	"rasterflow/pkg/interpolation"
)

// Downscale methods
const (
	DownscaleAverage = `avg`
	DownscaleThin    = `thin`
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Filter parameters
	Filter struct {
		// KernelWidth is the horizontal kernel size in pixels
		KernelWidth int `yaml:"kernelWidth"`

		// KernelHeight is the vertical kernel size in pixels
		KernelHeight int `yaml:"kernelHeight"`
	} `yaml:"filter"`

	// Rotation parameters
	Rotate struct {
		// Angle is the counter-clockwise rotation in degrees
		Angle float64 `yaml:"angle"`

		// Interpolation selects the sampling kernel
		Interpolation interpolation.Method `yaml:"interpolation"`
	} `yaml:"rotate"`

	// Downscale parameters
	Downscale struct {
		// Factor is the integer reduction factor applied to both axes
		Factor int `yaml:"factor"`

		// Method is avg (block mean) or thin (top-left sample)
		Method string `yaml:"method"`
	} `yaml:"downscale"`

	// Contrast stretch applied while converting high bit depth TIFF input
	Contrast struct {
		Enabled bool `yaml:"enabled"`

		// Low and High are the histogram fractions mapped to 0 and 255
		Low  float64 `yaml:"low"`
		High float64 `yaml:"high"`
	} `yaml:"contrast"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// Progress logs completion steps of long running operations
		Progress bool `yaml:"progress"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Filter.KernelWidth = 3
	cfg.Filter.KernelHeight = 3

	cfg.Rotate.Angle = 0
	cfg.Rotate.Interpolation = interpolation.Bilinear

	cfg.Downscale.Factor = 2
	cfg.Downscale.Method = DownscaleAverage

	cfg.Contrast.Enabled = false
	cfg.Contrast.Low = 0.01
	cfg.Contrast.High = 0.99

	cfg.Output.Verbose = false
	cfg.Output.Progress = true

	return cfg
}

// Validate reports the first out of range setting
func (c *Config) Validate() error {
	switch {
	case c.Filter.KernelWidth < 1 || c.Filter.KernelHeight < 1:
		return errors.Errorf("%w: kernel size %dx%d", errors.ErrInvalidArgument, c.Filter.KernelWidth, c.Filter.KernelHeight)
	case c.Rotate.Interpolation.String() == `unknown`:
		return errors.Errorf("%w: interpolation %d", errors.ErrInvalidArgument, int(c.Rotate.Interpolation))
	case c.Downscale.Factor < 1:
		return errors.Errorf("%w: downscale factor %d", errors.ErrInvalidArgument, c.Downscale.Factor)
	case c.Downscale.Method != DownscaleAverage && c.Downscale.Method != DownscaleThin:
		return errors.Errorf("%w: downscale method %q", errors.ErrInvalidArgument, c.Downscale.Method)
	case c.Contrast.Low < 0 || c.Contrast.High > 1 || c.Contrast.Low >= c.Contrast.High:
		return errors.Errorf("%w: contrast range %g..%g", errors.ErrInvalidArgument, c.Contrast.Low, c.Contrast.High)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Errorf("%w: error parsing config file: %w", errors.ErrInvalidArgument, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Errorf("%w: error creating config directory: %w", errors.ErrOutputNotWritable, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Errorf("%w: error writing config file: %w", errors.ErrOutputNotWritable, err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
