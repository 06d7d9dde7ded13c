// Package batch runs many files through the processor with bounded
// concurrency. One bad file never stops the rest of the batch.
package batch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/cleanse/internal/process"
)

// DefaultWorkers bounds concurrent file processing. OCR is the expensive
// stage and each invocation is already multi-threaded, so a small pool wins.
const DefaultWorkers = 4

// Status classifies what happened to one file.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// FileReport is the per-file entry in a batch report.
type FileReport struct {
	File   string          `json:"file"`
	Status Status          `json:"status"`
	Reason string          `json:"reason,omitempty"`
	Result *process.Result `json:"result,omitempty"`
}

// Report aggregates a whole batch run.
type Report struct {
	StartedAt         time.Time            `json:"started_at"`
	FinishedAt        time.Time            `json:"finished_at"`
	Processed         int                  `json:"processed"`
	Failed            int                  `json:"failed"`
	Skipped           int                  `json:"skipped"`
	SensitiveFindings int                  `json:"sensitive_findings"`
	ByKind            map[process.Kind]int `json:"by_kind"`
	Files             []FileReport         `json:"files"`
}

// WriteJSON persists the report for later inspection.
func (r *Report) WriteJSON(path string) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// Runner drives a processor over many files.
type Runner struct {
	proc    *process.Processor
	log     *log.Logger
	workers int
}

// NewRunner builds a runner; workers <= 0 means DefaultWorkers.
func NewRunner(p *process.Processor, logger *log.Logger, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{proc: p, log: logger, workers: workers}
}

// Run processes every path with bounded concurrency and returns the
// aggregated report. Per-file failures are recorded, not returned; the only
// error out of Run is context cancellation.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{
		StartedAt: time.Now(),
		ByKind:    make(map[process.Kind]int),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fr := r.processOne(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			report.Files = append(report.Files, fr)
			switch fr.Status {
			case StatusOK:
				report.Processed++
				report.ByKind[fr.Result.FileType]++
				report.SensitiveFindings += len(fr.Result.SensitiveItems)
			case StatusSkipped:
				report.Skipped++
			case StatusFailed:
				report.Failed++
			}
			return nil
		})
	}

	err := g.Wait()
	report.FinishedAt = time.Now()

	// Worker scheduling shuffles completion order; reports stay stable.
	sort.Slice(report.Files, func(i, j int) bool {
		return report.Files[i].File < report.Files[j].File
	})
	return report, err
}

func (r *Runner) processOne(ctx context.Context, path string) FileReport {
	res, err := r.proc.Process(ctx, path)
	switch {
	case err == nil:
		r.log.Info("processed", "file", path, "findings", len(res.SensitiveItems))
		return FileReport{File: path, Status: StatusOK, Result: res}
	case errors.Is(err, process.ErrUnsupportedFormat), errors.Is(err, process.ErrOversize):
		r.log.Warn("skipped", "file", path, "reason", err)
		return FileReport{File: path, Status: StatusSkipped, Reason: err.Error()}
	default:
		r.log.Error("failed", "file", path, "err", err)
		return FileReport{File: path, Status: StatusFailed, Reason: err.Error()}
	}
}

// Expand resolves files and directories into the flat list of candidate
// files. Directories are walked recursively; unsupported files, hidden
// files, and this tool's own output artifacts are left out.
func Expand(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if seen[path] || !IsCandidate(path) {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsCandidate filters out hidden files, our own artifacts, and formats
// without a handler.
func IsCandidate(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.HasSuffix(stem, "_redacted") || strings.HasSuffix(stem, "_processed") ||
		strings.Contains(stem, "_page_") {
		return false
	}
	_, err := process.DetectKind(path)
	return err == nil
}
