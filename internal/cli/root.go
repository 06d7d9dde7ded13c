// Package cli wires the cobra command tree around the redaction pipeline.
package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/cleanse/internal/config"
	"github.com/Dicklesworthstone/cleanse/internal/logging"
	"github.com/Dicklesworthstone/cleanse/internal/patterns"
)

var (
	flagConfig  string
	flagVerbose bool
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanse",
		Short: "Detect and redact sensitive data in files",
		Long: `cleanse finds and destroys sensitive data in heterogeneous files.

Images and PDFs go through OCR and pixel-level redaction (blur or blackout);
text, JSON, XML, CSV and spreadsheets are rewritten with placeholders. Every
run records what was found, never the sensitive values themselves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.cleanse/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newProcessCmd(),
		newWatchCmd(),
		newPatternsCmd(),
		newReportCmd(),
	)
	return cmd
}

// env is the shared runtime every subcommand builds once.
type env struct {
	cfg config.Config
	log *log.Logger
	reg *patterns.Registry
}

func buildEnv() (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{Verbose: flagVerbose})

	reg := patterns.New()
	if cfg.Patterns.File != "" {
		if err := reg.LoadFile(config.ExpandPath(cfg.Patterns.File)); err != nil {
			return nil, fmt.Errorf("loading custom patterns: %w", err)
		}
		logger.Debug("custom patterns loaded", "file", cfg.Patterns.File, "total", reg.Len())
	}

	return &env{cfg: cfg, log: logger, reg: reg}, nil
}
