package audit

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dicklesworthstone/cleanse/internal/batch"
	"github.com/Dicklesworthstone/cleanse/internal/patterns"
	"github.com/Dicklesworthstone/cleanse/internal/process"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport() *batch.Report {
	now := time.Now().UTC().Truncate(time.Second)
	return &batch.Report{
		StartedAt:         now.Add(-time.Minute),
		FinishedAt:        now,
		Processed:         2,
		Failed:            1,
		SensitiveFindings: 2,
		Files: []batch.FileReport{
			{
				File:   "/tmp/a.txt",
				Status: batch.StatusOK,
				Result: &process.Result{
					File:         "/tmp/a.txt",
					FileType:     process.KindText,
					DocumentType: "unknown",
					SensitiveItems: []process.Item{
						{Type: "email", Category: patterns.CategoryContact, Confidence: 1.0},
						{Type: "suspected_date", Confidence: 0.7, Location: "row 2 col 1"},
					},
				},
			},
			{File: "/tmp/bad.json", Status: batch.StatusFailed, Reason: "parse error"},
		},
	}
}

func TestRecordAndListRuns(t *testing.T) {
	s := testStore(t)

	runID, err := s.RecordRun(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	if runID == 0 {
		t.Fatal("run id is zero")
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != runID || r.Processed != 2 || r.Failed != 1 || r.Findings != 2 {
		t.Errorf("run = %+v", r)
	}
	if r.StartedAt.IsZero() || !r.FinishedAt.After(r.StartedAt) {
		t.Errorf("timestamps not round-tripped: %+v", r)
	}
}

func TestFindings(t *testing.T) {
	s := testStore(t)
	runID, err := s.RecordRun(sampleReport())
	if err != nil {
		t.Fatal(err)
	}

	findings, err := s.Findings(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}
	f := findings[0]
	if f.ItemType != "email" || f.File != "/tmp/a.txt" || f.Confidence != 1.0 {
		t.Errorf("finding = %+v", f)
	}
	if findings[1].Location != "row 2 col 1" {
		t.Errorf("location = %q", findings[1].Location)
	}
}

func TestFindingsRunNotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.Findings(999); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestFindingsByFile(t *testing.T) {
	s := testStore(t)
	if _, err := s.RecordRun(sampleReport()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRun(sampleReport()); err != nil {
		t.Fatal(err)
	}

	findings, err := s.FindingsByFile("/tmp/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 4 {
		t.Fatalf("got %d findings across runs, want 4", len(findings))
	}
	// Newest first.
	if findings[0].RunID < findings[3].RunID {
		t.Errorf("ordering wrong: %+v", findings)
	}
}

func TestRecordRunSkipsFailedFiles(t *testing.T) {
	s := testStore(t)
	runID, err := s.RecordRun(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	findings, err := s.Findings(runID)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range findings {
		if f.File == "/tmp/bad.json" {
			t.Error("failed file produced findings")
		}
	}
}
