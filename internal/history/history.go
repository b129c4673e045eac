// Package history provides SQLite-backed storage of past lint runs. It is
// a reporting aid only; scans never consult it.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/featlint/internal/scan"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	feature    TEXT NOT NULL,
	started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS outcomes (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	role   TEXT NOT NULL,
	rule   TEXT NOT NULL,
	passed INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
`

// DB wraps a sql.DB with run-history operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RunSummary describes one recorded lint run.
type RunSummary struct {
	ID        int64     `json:"id"`
	Feature   string    `json:"feature"`
	StartedAt time.Time `json:"started_at"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
}

// Outcome is one recorded per-directory rule outcome.
type Outcome struct {
	Role   string `json:"role"`
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
}

// RecordRun stores the per-rule outcomes of a completed scan sequence and
// returns the new run id.
func (db *DB) RecordRun(feature string, results []*scan.Result) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs (feature) VALUES (?)`, feature)
	if err != nil {
		return 0, fmt.Errorf("history: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: run id: %w", err)
	}

	for _, r := range results {
		for _, rl := range r.Rules {
			passed := 0
			if r.Outcomes[rl.Name] {
				passed = 1
			}
			if _, err := tx.Exec(
				`INSERT INTO outcomes (run_id, role, rule, passed) VALUES (?, ?, ?, ?)`,
				runID, r.Subdir.Role.String(), rl.Name, passed,
			); err != nil {
				return 0, fmt.Errorf("history: insert outcome: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("history: commit: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first, with pass/fail counts.
func (db *DB) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT r.id, r.feature, r.started_at,
		       COALESCE(SUM(o.passed), 0),
		       COALESCE(SUM(1 - o.passed), 0)
		FROM runs r
		LEFT JOIN outcomes o ON o.run_id = r.id
		GROUP BY r.id
		ORDER BY r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.Feature, &s.StartedAt, &s.Passed, &s.Failed); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate runs: %w", err)
	}
	return out, nil
}

// RunOutcomes returns the recorded outcomes of one run in insertion order.
func (db *DB) RunOutcomes(runID int64) ([]Outcome, error) {
	rows, err := db.conn.Query(
		`SELECT role, rule, passed FROM outcomes WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var passed int
		if err := rows.Scan(&o.Role, &o.Rule, &passed); err != nil {
			return nil, fmt.Errorf("history: scan outcome: %w", err)
		}
		o.Passed = passed != 0
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate outcomes: %w", err)
	}
	return out, nil
}
