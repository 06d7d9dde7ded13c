package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Redact.Mode != def.Redact.Mode || cfg.Batch.Workers != def.Batch.Workers {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Output.PrettyJSON {
		t.Error("pretty json not defaulted on")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"redact:",
		"  mode: blackout",
		"  padding: 5",
		"batch:",
		"  workers: 8",
		"watch:",
		"  quiet_period: 5s",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Redact.Mode != "blackout" || cfg.Redact.Padding != 5 {
		t.Errorf("redact = %+v", cfg.Redact)
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("workers = %d", cfg.Batch.Workers)
	}
	if cfg.Watch.QuietPeriod != Duration(5*time.Second) {
		t.Errorf("quiet period = %v", cfg.Watch.QuietPeriod)
	}
	// Untouched sections keep defaults.
	if cfg.OCR.Languages != "eng" {
		t.Errorf("languages = %q", cfg.OCR.Languages)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CLEANSE_MODE", "blackout")
	t.Setenv("CLEANSE_WORKERS", "2")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Redact.Mode != "blackout" || cfg.Batch.Workers != 2 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Redact.Mode = "pixelate" }},
		{"bad preset", func(c *Config) { c.Redact.Preset = "extreme" }},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"tiny dpi", func(c *Config) { c.PDF.DPI = 10 }},
	}
	for _, c := range cases {
		cfg := Default()
		c.mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("%s: invalid config accepted", c.name)
		}
	}
	if err := Validate(Default()); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandPath("~/x.yaml"); got != filepath.Join(home, "x.yaml") {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
}
