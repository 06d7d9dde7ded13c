// Package logging builds the structured loggers used across the tool.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "CLEANSE_LOG_LEVEL"

// Options configure a logger.
type Options struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string
	// Output defaults to os.Stderr.
	Output io.Writer
	// Prefix names the component.
	Prefix string
	// Verbose forces debug level regardless of Level.
	Verbose bool
}

// New builds a logger, honoring CLEANSE_LOG_LEVEL over Options.Level.
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := opts.Level
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}
	if opts.Verbose {
		level = "debug"
	}
	return log.NewWithOptions(out, log.Options{
		Level:           parseLevel(level),
		Prefix:          opts.Prefix,
		TimeFormat:      time.Kitchen,
		ReportTimestamp: true,
	})
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info", "":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
