// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records finished conversion runs and their per-file
// outcomes in a SQLite database for later inspection. The records are an
// audit trail only; nothing reads them back to resume work.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/batchconv/pkg/types"
)

const defaultLimit = 20

// timeLayout is RFC 3339 with fixed-width nanoseconds so that stored
// timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded outcome.
type Entry struct {
	RunID      uuid.UUID     `json:"run_id" yaml:"run_id"`
	ItemID     uuid.UUID     `json:"item_id" yaml:"item_id"`
	Path       string        `json:"path" yaml:"path"`
	Success    bool          `json:"success" yaml:"success"`
	Message    string        `json:"message,omitempty" yaml:"message,omitempty"`
	OutputPath string        `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Charset    string        `json:"charset,omitempty" yaml:"charset,omitempty"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	RecordedAt time.Time     `json:"recorded_at" yaml:"recorded_at"`
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			config_id TEXT NOT NULL,
			output_dir TEXT,
			waves INTEGER NOT NULL DEFAULT 0,
			converted INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			stale INTEGER NOT NULL DEFAULT 0,
			started TEXT NOT NULL,
			finished TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			item_id TEXT NOT NULL,
			path TEXT NOT NULL,
			success INTEGER NOT NULL,
			message TEXT,
			output_path TEXT,
			charset TEXT,
			duration_ms INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun inserts or updates the row for res.
func (s *Store) RecordRun(ctx context.Context, res types.RunResult) error {
	var finished sql.NullString
	if !res.Finished.IsZero() {
		finished = sql.NullString{String: formatTime(res.Finished), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, config_id, output_dir, waves, converted, failed, stale, started, finished)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			waves = excluded.waves,
			converted = excluded.converted,
			failed = excluded.failed,
			stale = excluded.stale,
			finished = excluded.finished`,
		res.ID.String(), res.ConfigID, res.OutputDir, res.Waves, res.Converted,
		res.Failed, res.Stale, formatTime(res.Started), finished,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", res.ID, err)
	}
	return nil
}

// RecordOutcome appends an outcome to run runID.
func (s *Store) RecordOutcome(ctx context.Context, runID uuid.UUID, o types.Outcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, item_id, path, success, message, output_path, charset, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID.String(), o.Item.ID.String(), o.Item.Path, boolToInt(o.Success), o.Message,
		o.OutputPath, o.Charset, o.Duration.Milliseconds(), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("recording outcome for %s: %w", o.Item.Path, err)
	}
	return nil
}

// Runs returns up to limit runs, most recent first. A limit of zero or
// less selects the default of 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]types.RunResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_id, output_dir, waves, converted, failed, stale, started, finished
		FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunResult
	for rows.Next() {
		var (
			r                 types.RunResult
			id, started       string
			outputDir, finish sql.NullString
		)
		if err := rows.Scan(&id, &r.ConfigID, &outputDir, &r.Waves, &r.Converted,
			&r.Failed, &r.Stale, &started, &finish); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing run id %q: %w", id, err)
		}
		r.OutputDir = outputDir.String
		r.Started = parseTime(started)
		if finish.Valid {
			r.Finished = parseTime(finish.String)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes returns the recorded outcomes of run runID in recording order.
func (s *Store) Outcomes(ctx context.Context, runID uuid.UUID) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, path, success, message, output_path, charset, duration_ms, recorded_at
		FROM outcomes WHERE run_id = ? ORDER BY rowid`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                        Entry
			itemID, recorded         string
			success                  int
			durationMS               int64
			message, output, charset sql.NullString
		)
		if err := rows.Scan(&itemID, &e.Path, &success, &message, &output, &charset,
			&durationMS, &recorded); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		if e.ItemID, err = uuid.Parse(itemID); err != nil {
			return nil, fmt.Errorf("parsing item id %q: %w", itemID, err)
		}
		e.RunID = runID
		e.Success = success != 0
		e.Message = message.String
		e.OutputPath = output.String
		e.Charset = charset.String
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.RecordedAt = parseTime(recorded)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// exportRun is the YAML shape written by ExportYAML.
type exportRun struct {
	Run      types.RunResult `yaml:"run"`
	Outcomes []Entry         `yaml:"outcomes"`
}

// ExportYAML writes up to limit recent runs with their outcomes to w.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	runs, err := s.Runs(ctx, limit)
	if err != nil {
		return err
	}
	out := make([]exportRun, 0, len(runs))
	for _, r := range runs {
		entries, err := s.Outcomes(ctx, r.ID)
		if err != nil {
			return err
		}
		out = append(out, exportRun{Run: r, Outcomes: entries})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return enc.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
