package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/cleanse/internal/audit"
	"github.com/Dicklesworthstone/cleanse/internal/batch"
	"github.com/Dicklesworthstone/cleanse/internal/config"
	"github.com/Dicklesworthstone/cleanse/internal/output"
	"github.com/Dicklesworthstone/cleanse/internal/process"
	"github.com/Dicklesworthstone/cleanse/internal/redactor"
)

var (
	processOutputDir string
	processMode      string
	processPreset    string
	processWorkers   int
	processReport    string
	processNoAudit   bool
	processDiff      bool
)

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [paths...]",
		Short: "Redact sensitive data in files and directories",
		Long: `Process files or directory trees through the redaction pipeline.

Directories are walked recursively; unsupported files and previous output
artifacts are skipped. Failures are isolated per file and summarized at
the end.

Examples:
  cleanse process scan.png                      # One file
  cleanse process ~/inbox --output ~/clean      # Whole directory
  cleanse process doc.pdf --mode blackout       # Solid boxes instead of blur
  cleanse process data/ --report report.json    # Persist the machine report`,
		Args: cobra.MinimumNArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().StringVarP(&processOutputDir, "output", "o", "", "directory for redacted artifacts (default: alongside inputs)")
	cmd.Flags().StringVar(&processMode, "mode", "", "redaction mode: blur or blackout")
	cmd.Flags().StringVar(&processPreset, "preset", "", "blur preset: standard or strong")
	cmd.Flags().IntVar(&processWorkers, "workers", 0, "concurrent files (default from config)")
	cmd.Flags().StringVar(&processReport, "report", "", "write the JSON report to this path")
	cmd.Flags().BoolVar(&processNoAudit, "no-audit", false, "skip recording the run in the audit database")
	cmd.Flags().BoolVar(&processDiff, "diff", false, "preview text redactions as a word-level diff (prints original values)")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	e, err := buildEnv()
	if err != nil {
		return err
	}

	files, err := batch.Expand(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no processable files under %v", args)
	}

	runner := batch.NewRunner(buildProcessor(e), e.log, pickInt(processWorkers, e.cfg.Batch.Workers))
	report, err := runner.Run(cmd.Context(), files)
	if err != nil {
		return err
	}

	renderer := output.NewRenderer(os.Stdout)
	renderer.Summary(report)

	if processDiff {
		renderDiffs(renderer, report)
	}

	if processReport != "" {
		if err := report.WriteJSON(processReport); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		e.log.Info("report written", "path", processReport)
	}

	if e.cfg.Audit.Enabled && !processNoAudit {
		if err := recordAudit(e, report); err != nil {
			// Audit is bookkeeping; the redaction already happened.
			e.log.Warn("audit record failed", "err", err)
		}
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, len(files))
	}
	return nil
}

// buildProcessor assembles a processor from config plus flag overrides.
func buildProcessor(e *env) *process.Processor {
	return process.New(e.reg, e.log, process.Options{
		OutputDir:        pickString(processOutputDir, e.cfg.Output.Dir),
		TempDir:          config.ExpandPath(e.cfg.Output.TempDir),
		CompactJSON:      !e.cfg.Output.PrettyJSON,
		Mode:             redactor.Mode(pickString(processMode, e.cfg.Redact.Mode)),
		Preset:           redactor.Preset(pickString(processPreset, e.cfg.Redact.Preset)),
		KernelSize:       e.cfg.Redact.KernelSize,
		MergeDistance:    e.cfg.Redact.MergeDistance,
		Padding:          e.cfg.Redact.Padding,
		DPI:              e.cfg.PDF.DPI,
		Languages:        e.cfg.OCR.Languages,
		MinOCRConfidence: e.cfg.OCR.MinConfidence,
		MaxFileSize:      int64(e.cfg.Batch.MaxFileSizeMB) << 20,
	})
}

// renderDiffs previews text-family redactions. This is the one place the
// original values reach the terminal, and only on explicit request.
func renderDiffs(renderer *output.Renderer, report *batch.Report) {
	for _, f := range report.Files {
		if f.Result == nil || !f.Result.RedactionApplied || len(f.Result.OutputFiles) == 0 {
			continue
		}
		switch f.Result.FileType {
		case process.KindText, process.KindMarkup, process.KindCSV:
		default:
			continue
		}
		before, err := os.ReadFile(f.File)
		if err != nil {
			continue
		}
		after, err := os.ReadFile(f.Result.OutputFiles[0])
		if err != nil {
			continue
		}
		fmt.Fprintln(os.Stdout, f.File)
		renderer.Diff(string(before), string(after))
	}
}

func recordAudit(e *env, report *batch.Report) error {
	store, err := audit.Open(config.ExpandPath(e.cfg.Audit.DatabasePath))
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.RecordRun(report)
	if err != nil {
		return err
	}
	e.log.Debug("run recorded", "run_id", runID)
	return nil
}

func pickString(flag, cfg string) string {
	if flag != "" {
		return flag
	}
	return cfg
}

func pickInt(flag, cfg int) int {
	if flag > 0 {
		return flag
	}
	return cfg
}
