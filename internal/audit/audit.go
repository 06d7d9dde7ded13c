// Package audit persists batch outcomes in a local SQLite database so past
// runs can be reviewed without keeping JSON reports around. Findings are
// stored without the matched text itself.
package audit

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Dicklesworthstone/cleanse/internal/batch"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("audit: run not found")

// Store wraps the audit database.
type Store struct {
	db   *sql.DB
	path string
}

// RunSummary is one recorded batch run.
type RunSummary struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Findings   int       `json:"findings"`
}

// Finding is one stored sensitive item.
type Finding struct {
	RunID      int64   `json:"run_id"`
	File       string  `json:"file"`
	FileType   string  `json:"file_type"`
	DocType    string  `json:"doc_type"`
	ItemType   string  `json:"item_type"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Location   string  `json:"location,omitempty"`
}

// Open creates or opens the store at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("audit: creating db dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("audit: opening %s: %w", path, err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			processed   INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			findings    INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS findings (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			file       TEXT NOT NULL,
			file_type  TEXT NOT NULL,
			doc_type   TEXT NOT NULL,
			item_type  TEXT NOT NULL,
			category   TEXT NOT NULL,
			confidence REAL NOT NULL,
			location   TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
		CREATE INDEX IF NOT EXISTS idx_findings_file ON findings(file);
	`)
	if err != nil {
		return fmt.Errorf("audit: migrating: %w", err)
	}
	return nil
}

// RecordRun stores a batch report and its findings atomically, returning
// the new run id.
func (s *Store) RecordRun(report *batch.Report) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("audit: beginning tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, finished_at, processed, failed, skipped, findings)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.StartedAt.UTC().Format(time.RFC3339), report.FinishedAt.UTC().Format(time.RFC3339),
		report.Processed, report.Failed, report.Skipped, report.SensitiveFindings)
	if err != nil {
		return 0, fmt.Errorf("audit: inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("audit: getting run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO findings (run_id, file, file_type, doc_type, item_type, category, confidence, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("audit: preparing finding insert: %w", err)
	}
	defer stmt.Close()

	for _, fr := range report.Files {
		if fr.Result == nil {
			continue
		}
		for _, item := range fr.Result.SensitiveItems {
			if _, err := stmt.Exec(runID, fr.File, string(fr.Result.FileType),
				fr.Result.DocumentType, item.Type, string(item.Category),
				item.Confidence, item.Location); err != nil {
				return 0, fmt.Errorf("audit: inserting finding: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("audit: committing: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, processed, failed, skipped, findings
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r                 RunSummary
			started, finished string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Processed, &r.Failed, &r.Skipped, &r.Findings); err != nil {
			return nil, fmt.Errorf("audit: scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Findings returns every finding recorded for a run.
func (s *Store) Findings(runID int64) ([]Finding, error) {
	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("audit: checking run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}

	rows, err := s.db.Query(`
		SELECT run_id, file, file_type, doc_type, item_type, category, confidence, location
		FROM findings WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("audit: listing findings: %w", err)
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.RunID, &f.File, &f.FileType, &f.DocType,
			&f.ItemType, &f.Category, &f.Confidence, &f.Location); err != nil {
			return nil, fmt.Errorf("audit: scanning finding: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// FindingsByFile returns every finding ever recorded for a file path,
// across all runs, newest first.
func (s *Store) FindingsByFile(file string) ([]Finding, error) {
	rows, err := s.db.Query(`
		SELECT run_id, file, file_type, doc_type, item_type, category, confidence, location
		FROM findings WHERE file = ? ORDER BY id DESC
	`, file)
	if err != nil {
		return nil, fmt.Errorf("audit: querying file findings: %w", err)
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.RunID, &f.File, &f.FileType, &f.DocType,
			&f.ItemType, &f.Category, &f.Confidence, &f.Location); err != nil {
			return nil, fmt.Errorf("audit: scanning finding: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
