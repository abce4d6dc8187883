package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "opexport.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Op != "op" {
		t.Errorf("Op = %q, want op", cfg.Op)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.Retries != 0 {
		t.Errorf("Retries = %d, want 0", cfg.Retries)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log defaults = %s/%s, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("Full file", func(t *testing.T) {
		path := writeConfig(t, `
op: /opt/1password/op
output: vault.json
concurrency: 4
retries: 2
rate: 2.5
sort_by_id: true
log_level: debug
log_format: json
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Op != "/opt/1password/op" {
			t.Errorf("Op = %q", cfg.Op)
		}
		if cfg.Output != "vault.json" {
			t.Errorf("Output = %q", cfg.Output)
		}
		if cfg.Concurrency != 4 || cfg.Retries != 2 || cfg.Rate != 2.5 {
			t.Errorf("numbers = %d/%d/%v, want 4/2/2.5", cfg.Concurrency, cfg.Retries, cfg.Rate)
		}
		if !cfg.SortByID {
			t.Error("SortByID = false, want true")
		}
		if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
			t.Errorf("log settings = %s/%s", cfg.LogLevel, cfg.LogFormat)
		}
	})

	t.Run("Partial file keeps defaults", func(t *testing.T) {
		path := writeConfig(t, "concurrency: 2\n")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Concurrency != 2 {
			t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
		}
		if cfg.Op != "op" || cfg.LogLevel != "info" {
			t.Errorf("defaults lost: op=%q level=%q", cfg.Op, cfg.LogLevel)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("Load() succeeded on missing file")
		}
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		path := writeConfig(t, "concurrency: [not a number\n")

		if _, err := Load(path); err == nil {
			t.Error("Load() succeeded on malformed YAML")
		}
	})

	t.Run("Unknown key rejected", func(t *testing.T) {
		path := writeConfig(t, "concurency: 2\n")

		_, err := Load(path)
		if err == nil {
			t.Fatal("Load() succeeded with a misspelled key")
		}
		if !strings.Contains(err.Error(), "concurency") {
			t.Errorf("error %v does not name the unknown key", err)
		}
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Empty op command", func(c *Config) { c.Op = "" }},
		{"Zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"Negative retries", func(c *Config) { c.Retries = -1 }},
		{"Negative rate", func(c *Config) { c.Rate = -1 }},
		{"Bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"Bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() passed, want error")
			}
		})
	}
}
