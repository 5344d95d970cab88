// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/piccy-engine/internal/imaging"
	"github.com/ironsheep/piccy-engine/internal/logger"
)

// Environment variables consulted by Load.
const (
	EnvConfig        = "PICCY_CONFIG"
	EnvLogLevel      = "PICCY_LOG_LEVEL"
	EnvWorkers       = "PICCY_WORKERS"
	EnvOutputDir     = "PICCY_OUTPUT_DIR"
	EnvMaxInputBytes = "PICCY_MAX_INPUT_BYTES"
)

// Config represents the full configuration for piccy.
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Server
	Workers int `yaml:"workers"`

	// Input limits
	MaxInputBytes int64 `yaml:"max_input_bytes"`
	MaxPixels     int64 `yaml:"max_pixels"`

	// Output
	OutputDir   string `yaml:"output_dir"`
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		LogLevel:      "info",
		Workers:       4,
		MaxInputBytes: 64 << 20,
		MaxPixels:     200_000_000,
		OutputDir:     os.TempDir(),
		JPEGQuality:   imaging.DefaultJPEGQuality,
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (or $PICCY_CONFIG when path is empty), then environment overrides.
// The result is validated.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Defaults()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvOutputDir); ok {
		c.OutputDir = v
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvMaxInputBytes); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxInputBytes, err)
		}
		c.MaxInputBytes = n
	}
	return nil
}

// Validate checks that every field is in range.
func (c Config) Validate() error {
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers: must be at least 1, got %d", c.Workers)
	}
	if c.MaxInputBytes < 0 {
		return fmt.Errorf("max_input_bytes: must not be negative, got %d", c.MaxInputBytes)
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("max_pixels: must not be negative, got %d", c.MaxPixels)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir: must not be empty")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality: must be 1-100, got %d", c.JPEGQuality)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() logger.Level {
	l, _ := logger.ParseLevel(c.LogLevel)
	return l
}

// EncodeOptions returns the encoder settings derived from the config.
func (c Config) EncodeOptions() imaging.EncodeOptions {
	return imaging.EncodeOptions{JPEGQuality: c.JPEGQuality}
}
