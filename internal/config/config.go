// Package config loads the tool configuration with the precedence
// defaults < ~/.cleanse/config.yaml < CLEANSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full tunable surface.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Redact   RedactConfig   `yaml:"redact"`
	OCR      OCRConfig      `yaml:"ocr"`
	PDF      PDFConfig      `yaml:"pdf"`
	Batch    BatchConfig    `yaml:"batch"`
	Watch    WatchConfig    `yaml:"watch"`
	Audit    AuditConfig    `yaml:"audit"`
	Patterns PatternsConfig `yaml:"patterns"`
}

type OutputConfig struct {
	// Dir receives all artifacts; empty means alongside each input.
	Dir string `yaml:"dir"`
	// TempDir holds intermediate page rasters; empty means the system default.
	TempDir string `yaml:"temp_dir"`
	// PrettyJSON indents redacted JSON documents.
	PrettyJSON bool `yaml:"pretty_json"`
}

type RedactConfig struct {
	// Mode is "blur" or "blackout".
	Mode string `yaml:"mode"`
	// Preset is "standard" or "strong".
	Preset string `yaml:"preset"`
	// KernelSize is the gaussian kernel width, forced odd downstream.
	KernelSize int `yaml:"kernel_size"`
	// MergeDistance and Padding tune region geometry in pixels.
	MergeDistance float64 `yaml:"merge_distance"`
	Padding       int     `yaml:"padding"`
}

type OCRConfig struct {
	// Languages is the tesseract language spec, e.g. "eng+hin".
	Languages string `yaml:"languages"`
	// MinConfidence filters word boxes below this score.
	MinConfidence int `yaml:"min_confidence"`
}

type PDFConfig struct {
	DPI int `yaml:"dpi"`
}

type BatchConfig struct {
	Workers       int `yaml:"workers"`
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

// Duration accepts yaml strings like "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

type WatchConfig struct {
	// QuietPeriod is how long a file must be unchanged before processing.
	QuietPeriod Duration `yaml:"quiet_period"`
}

type AuditConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

type PatternsConfig struct {
	// File points at a TOML file of custom patterns loaded on startup.
	File string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output: OutputConfig{PrettyJSON: true},
		Redact: RedactConfig{
			Mode:          "blur",
			Preset:        "standard",
			KernelSize:    45,
			MergeDistance: 50,
			Padding:       20,
		},
		OCR: OCRConfig{
			Languages:     "eng",
			MinConfidence: 30,
		},
		PDF:   PDFConfig{DPI: 300},
		Batch: BatchConfig{Workers: 4, MaxFileSizeMB: 50},
		Watch: WatchConfig{QuietPeriod: Duration(2 * time.Second)},
		Audit: AuditConfig{Enabled: true, DatabasePath: filepath.Join(Dir(), "audit.db")},
	}
}

// Dir returns the per-user directory for config and state.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".cleanse")
}

// DefaultPath is the conventional config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// ExpandPath resolves a leading ~ to the user home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// Load reads the config at path (DefaultPath when empty), layering it over
// defaults and then applying environment overrides. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(ExpandPath(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults apply.
	default:
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers CLEANSE_* variables on top of the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CLEANSE_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("CLEANSE_MODE"); v != "" {
		cfg.Redact.Mode = v
	}
	if v := os.Getenv("CLEANSE_PRESET"); v != "" {
		cfg.Redact.Preset = v
	}
	if v := os.Getenv("CLEANSE_OCR_LANGUAGES"); v != "" {
		cfg.OCR.Languages = v
	}
	if v := os.Getenv("CLEANSE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Batch.Workers = n
		}
	}
	if v := os.Getenv("CLEANSE_MAX_FILE_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Batch.MaxFileSizeMB = n
		}
	}
	if v := os.Getenv("CLEANSE_AUDIT_DB"); v != "" {
		cfg.Audit.DatabasePath = v
	}
	if v := os.Getenv("CLEANSE_PATTERNS_FILE"); v != "" {
		cfg.Patterns.File = v
	}
}

// Validate rejects configurations the pipeline cannot run with.
func Validate(cfg Config) error {
	switch cfg.Redact.Mode {
	case "blur", "blackout":
	default:
		return fmt.Errorf("config: unknown redact mode %q", cfg.Redact.Mode)
	}
	switch cfg.Redact.Preset {
	case "standard", "strong":
	default:
		return fmt.Errorf("config: unknown blur preset %q", cfg.Redact.Preset)
	}
	if cfg.Batch.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", cfg.Batch.Workers)
	}
	if cfg.Batch.MaxFileSizeMB < 1 {
		return fmt.Errorf("config: max_file_size_mb must be at least 1, got %d", cfg.Batch.MaxFileSizeMB)
	}
	if cfg.PDF.DPI < 72 {
		return fmt.Errorf("config: pdf dpi %d is below the usable minimum", cfg.PDF.DPI)
	}
	return nil
}
