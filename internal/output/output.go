// Package output renders human-facing batch results to the terminal.
// Styling degrades to plain text when stdout is not a TTY.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/cleanse/internal/audit"
	"github.com/Dicklesworthstone/cleanse/internal/batch"
	"github.com/Dicklesworthstone/cleanse/internal/process"
)

const defaultWidth = 80

type styles struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
	subtle lipgloss.Style
}

func newStyles(plain bool) styles {
	if plain {
		s := lipgloss.NewStyle()
		return styles{title: s, ok: s, warn: s, bad: s, subtle: s}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		subtle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Renderer writes formatted reports.
type Renderer struct {
	w      io.Writer
	width  int
	styles styles
}

// NewRenderer builds a renderer for w. When w is the process stdout and a
// terminal, output is styled and wrapped to the terminal width.
func NewRenderer(w io.Writer) *Renderer {
	plain := true
	width := defaultWidth

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		plain = false
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 20 {
			width = tw
		}
	}
	return &Renderer{w: w, width: width, styles: newStyles(plain)}
}

// Summary renders the outcome of a batch run.
func (r *Renderer) Summary(report *batch.Report) {
	s := r.styles
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, s.title.Render("Redaction Summary"))
	fmt.Fprintln(r.w, strings.Repeat("─", min(r.width, 50)))

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(10 * time.Millisecond)
	fmt.Fprintf(r.w, "%s processed, %s skipped, %s failed in %s\n",
		s.ok.Render(fmt.Sprintf("%d", report.Processed)),
		s.warn.Render(fmt.Sprintf("%d", report.Skipped)),
		s.bad.Render(fmt.Sprintf("%d", report.Failed)),
		elapsed)
	fmt.Fprintf(r.w, "Sensitive findings: %d\n", report.SensitiveFindings)

	if len(report.ByKind) > 0 {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, s.title.Render("By format"))
		kinds := make([]string, 0, len(report.ByKind))
		for k := range report.ByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(r.w, "  %s %d\n", pad(k, 12), report.ByKind[process.Kind(k)])
		}
	}

	if counts := findingTypeCounts(report); len(counts) > 0 {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, s.title.Render("Findings by type"))
		for _, tc := range counts {
			fmt.Fprintf(r.w, "  %s %d\n", pad(tc.name, 24), tc.count)
		}
	}

	r.failures(report)
	fmt.Fprintln(r.w)
}

func (r *Renderer) failures(report *batch.Report) {
	s := r.styles
	printed := false
	for _, f := range report.Files {
		if f.Status != batch.StatusFailed {
			continue
		}
		if !printed {
			fmt.Fprintln(r.w)
			fmt.Fprintln(r.w, s.bad.Render("Failures"))
			printed = true
		}
		fmt.Fprintf(r.w, "  %s\n", f.File)
		wrapped := wordwrap.String(f.Reason, r.width-4)
		for _, line := range strings.Split(wrapped, "\n") {
			fmt.Fprintf(r.w, "    %s\n", s.subtle.Render(line))
		}
	}
}

// Runs renders stored audit runs.
func (r *Renderer) Runs(runs []audit.RunSummary) {
	s := r.styles
	if len(runs) == 0 {
		fmt.Fprintln(r.w, s.subtle.Render("No recorded runs."))
		return
	}
	fmt.Fprintln(r.w, s.title.Render("Recorded runs"))
	fmt.Fprintf(r.w, "  %s %s %s %s %s\n",
		pad("id", 6), pad("finished", 20), pad("ok", 5), pad("failed", 7), "findings")
	for _, run := range runs {
		fmt.Fprintf(r.w, "  %s %s %s %s %d\n",
			pad(fmt.Sprintf("%d", run.ID), 6),
			pad(run.FinishedAt.Local().Format("2006-01-02 15:04:05"), 20),
			pad(fmt.Sprintf("%d", run.Processed), 5),
			pad(fmt.Sprintf("%d", run.Failed), 7),
			run.Findings)
	}
}

// Findings renders stored findings for one run.
func (r *Renderer) Findings(findings []audit.Finding) {
	s := r.styles
	if len(findings) == 0 {
		fmt.Fprintln(r.w, s.subtle.Render("No findings recorded."))
		return
	}
	byFile := make(map[string][]audit.Finding)
	var files []string
	for _, f := range findings {
		if _, ok := byFile[f.File]; !ok {
			files = append(files, f.File)
		}
		byFile[f.File] = append(byFile[f.File], f)
	}
	for _, file := range files {
		fmt.Fprintln(r.w, s.title.Render(file))
		for _, f := range byFile[file] {
			loc := ""
			if f.Location != "" {
				loc = " at " + f.Location
			}
			fmt.Fprintf(r.w, "  %s %s\n",
				pad(f.ItemType, 24),
				s.subtle.Render(fmt.Sprintf("(%.1f)%s", f.Confidence, loc)))
		}
	}
}

type typeCount struct {
	name  string
	count int
}

// findingTypeCounts aggregates finding types across the whole report,
// most frequent first.
func findingTypeCounts(report *batch.Report) []typeCount {
	counts := make(map[string]int)
	for _, f := range report.Files {
		if f.Result == nil {
			continue
		}
		for _, item := range f.Result.SensitiveItems {
			counts[item.Type]++
		}
	}
	out := make([]typeCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, typeCount{name, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

// pad right-pads s to display width n, aware of wide runes.
func pad(s string, n int) string {
	w := runewidth.StringWidth(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}
