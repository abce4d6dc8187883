// Package config loads optional YAML configuration for opexport. Every
// value has a flag equivalent; flags set explicitly on the command line
// take precedence over file values.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all tunable settings for an export run.
type Config struct {
	// Op is the name or path of the external binary to invoke.
	Op string `yaml:"op"`

	// Output is the destination file path for the export.
	Output string `yaml:"output"`

	// Concurrency is the number of parallel fetch workers.
	Concurrency int `yaml:"concurrency"`

	// Retries is the number of extra attempts per failed fetch.
	Retries int `yaml:"retries"`

	// Rate caps fetch invocations per second. Zero means unlimited.
	Rate float64 `yaml:"rate"`

	// SortByID sorts the output by item id instead of listing order.
	SortByID bool `yaml:"sort_by_id"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in settings: the "op" binary from PATH,
// sequential single-pass fetching, text logs at info level.
func Default() Config {
	return Config{
		Op:          "op",
		Concurrency: 1,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load reads a YAML config file and overlays it on the defaults. Unknown
// keys are rejected so a typo fails loudly instead of being ignored.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid config file %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %q: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Op == "" {
		return fmt.Errorf("op command must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %v", c.Rate)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
