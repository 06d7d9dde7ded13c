package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Dicklesworthstone/cleanse/internal/audit"
	"github.com/Dicklesworthstone/cleanse/internal/batch"
	"github.com/Dicklesworthstone/cleanse/internal/process"
)

func sampleReport() *batch.Report {
	now := time.Now()
	return &batch.Report{
		StartedAt:         now.Add(-2 * time.Second),
		FinishedAt:        now,
		Processed:         2,
		Skipped:           1,
		Failed:            1,
		SensitiveFindings: 3,
		ByKind:            map[process.Kind]int{process.KindText: 1, process.KindImage: 1},
		Files: []batch.FileReport{
			{
				File:   "/in/a.txt",
				Status: batch.StatusOK,
				Result: &process.Result{
					FileType: process.KindText,
					SensitiveItems: []process.Item{
						{Type: "email", Confidence: 1},
						{Type: "email", Confidence: 1},
						{Type: "suspected_date", Confidence: 0.7},
					},
				},
			},
			{File: "/in/bad.json", Status: batch.StatusFailed, Reason: "unexpected end of JSON input"},
		},
	}
}

func TestSummaryPlain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Summary(sampleReport())
	out := buf.String()

	for _, want := range []string{
		"Redaction Summary",
		"2 processed, 1 skipped, 1 failed",
		"Sensitive findings: 3",
		"email",
		"/in/bad.json",
		"unexpected end of JSON input",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	// Not a TTY, so no escape sequences.
	if strings.Contains(out, "\x1b[") {
		t.Errorf("ANSI codes in non-TTY output:\n%q", out)
	}
}

func TestFindingTypeCountsOrdered(t *testing.T) {
	counts := findingTypeCounts(sampleReport())
	if len(counts) != 2 {
		t.Fatalf("counts = %+v", counts)
	}
	if counts[0].name != "email" || counts[0].count != 2 {
		t.Errorf("most frequent first: %+v", counts)
	}
}

func TestRuns(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Runs([]audit.RunSummary{
		{ID: 7, FinishedAt: time.Now(), Processed: 3, Failed: 0, Findings: 5},
	})
	if !strings.Contains(buf.String(), "7") || !strings.Contains(buf.String(), "5") {
		t.Errorf("runs output = %q", buf.String())
	}

	buf.Reset()
	r.Runs(nil)
	if !strings.Contains(buf.String(), "No recorded runs") {
		t.Errorf("empty runs output = %q", buf.String())
	}
}

func TestFindings(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Findings([]audit.Finding{
		{File: "/in/a.txt", ItemType: "email", Confidence: 1, Location: "row 2 col 1"},
	})
	out := buf.String()
	if !strings.Contains(out, "email") || !strings.Contains(out, "row 2 col 1") {
		t.Errorf("findings output = %q", out)
	}
}

func TestDiff(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Diff("mail jane@example.com now", "mail [EMAIL REDACTED] now")
	got := buf.String()

	if !strings.Contains(got, "[-") || !strings.Contains(got, "{+") {
		t.Errorf("diff has no markers: %q", got)
	}
	if !strings.Contains(got, "mail ") {
		t.Errorf("unchanged text missing: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("ANSI codes in non-TTY diff: %q", got)
	}
}

func TestDiffIdentical(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Diff("same", "same")
	if got := buf.String(); got != "same\n" {
		t.Errorf("diff of identical text = %q", got)
	}
}

func TestPad(t *testing.T) {
	if got := pad("ab", 5); got != "ab   " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdef", 3); got != "abcdef" {
		t.Errorf("pad truncated: %q", got)
	}
}
