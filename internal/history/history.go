// Package history persists build reports in a SQLite database so the preview
// server can show what happened across restarts.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/mdsite/internal/site"
)

// MemoryDSN keeps the whole store in process memory. Used when no database
// path is configured.
const MemoryDSN = ":memory:"

// StoredBuild is one persisted build, with the full report attached as JSON.
type StoredBuild struct {
	ID         int64           `json:"id"`
	BuildID    string          `json:"build_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Outcome    string          `json:"outcome"`
	Pages      int             `json:"pages"`
	Report     json.RawMessage `json:"report"`
}

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed creates) the history database. An empty path
// selects the in-memory store.
func Open(path string) (*Store, error) {
	if path == "" {
		path = MemoryDSN
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		report_json BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores a finished build report.
func (s *Store) Append(ctx context.Context, report *site.BuildReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, started_at, finished_at, outcome, pages, report_json) VALUES (?, ?, ?, ?, ?, ?)",
		report.BuildID, report.Start.Unix(), report.End.Unix(), string(report.Outcome), report.Pages, payload,
	)
	if err != nil {
		return fmt.Errorf("insert build report: %w", err)
	}
	return nil
}

// Recent returns up to n builds, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]StoredBuild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, started_at, finished_at, outcome, pages, report_json FROM builds ORDER BY id DESC LIMIT ?",
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query build history: %w", err)
	}
	defer rows.Close()

	var builds []StoredBuild
	for rows.Next() {
		var b StoredBuild
		var startedUnix, finishedUnix int64

		if err := rows.Scan(&b.ID, &b.BuildID, &startedUnix, &finishedUnix, &b.Outcome, &b.Pages, &b.Report); err != nil {
			return nil, fmt.Errorf("scan build row: %w", err)
		}
		b.StartedAt = time.Unix(startedUnix, 0)
		b.FinishedAt = time.Unix(finishedUnix, 0)
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate build rows: %w", err)
	}

	return builds, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
