package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/cleanse/internal/batch"
	"github.com/Dicklesworthstone/cleanse/internal/output"
	"github.com/Dicklesworthstone/cleanse/internal/watcher"
)

var watchQuiet time.Duration

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and redact files as they arrive",
		Long: `Watch a directory tree and run every new or modified file through the
redaction pipeline once it has been quiet for the debounce interval.
Runs until interrupted.

Examples:
  cleanse watch ~/inbox
  cleanse watch /srv/uploads --quiet 5s --output /srv/clean`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchQuiet, "quiet", 0, "settle time before processing (default from config)")
	cmd.Flags().StringVarP(&processOutputDir, "output", "o", "", "directory for redacted artifacts")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := buildEnv()
	if err != nil {
		return err
	}

	quiet := watchQuiet
	if quiet <= 0 {
		quiet = time.Duration(e.cfg.Watch.QuietPeriod)
	}

	runner := batch.NewRunner(buildProcessor(e), e.log, e.cfg.Batch.Workers)
	renderer := output.NewRenderer(os.Stdout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := func(paths []string) {
		report, err := runner.Run(ctx, paths)
		if err != nil {
			e.log.Error("batch aborted", "err", err)
			return
		}
		renderer.Summary(report)
		if e.cfg.Audit.Enabled {
			if err := recordAudit(e, report); err != nil {
				e.log.Warn("audit record failed", "err", err)
			}
		}
	}

	w, err := watcher.New(handle, e.log, quiet)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(args[0]); err != nil {
		return err
	}
	e.log.Info("watching", "dir", args[0], "quiet", quiet)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
