package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/cleanse/internal/audit"
	"github.com/Dicklesworthstone/cleanse/internal/config"
	"github.com/Dicklesworthstone/cleanse/internal/output"
)

var (
	reportLimit int
	reportFile  string
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show recorded runs and their findings",
		Long: `Without arguments, list recent runs from the audit database. With a run
id, show every finding recorded for that run.

Examples:
  cleanse report                   # Recent runs
  cleanse report 12                # Findings of run 12
  cleanse report --file scan.png   # Every finding ever recorded for a file`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReport,
	}
	cmd.Flags().IntVar(&reportLimit, "limit", 20, "number of runs to list")
	cmd.Flags().StringVar(&reportFile, "file", "", "show findings for this file across all runs")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := buildEnv()
	if err != nil {
		return err
	}

	store, err := audit.Open(config.ExpandPath(e.cfg.Audit.DatabasePath))
	if err != nil {
		return err
	}
	defer store.Close()

	renderer := output.NewRenderer(os.Stdout)

	if reportFile != "" {
		findings, err := store.FindingsByFile(reportFile)
		if err != nil {
			return err
		}
		renderer.Findings(findings)
		return nil
	}

	if len(args) == 0 {
		runs, err := store.ListRuns(reportLimit)
		if err != nil {
			return err
		}
		renderer.Runs(runs)
		return nil
	}

	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return err
	}
	findings, err := store.Findings(runID)
	if err != nil {
		return err
	}
	renderer.Findings(findings)
	return nil
}
