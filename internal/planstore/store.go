// Package planstore persists finished plan runs in SQLite so a session's
// history survives server restarts.
package planstore

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"career-spark/internal/plan"
)

var ErrNotFound = errors.New("plan run not found")

// Run is a persisted terminal run row.
type Run struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Goal         string    `json:"goal"`
	Status       string    `json:"status"`
	ResponseText string    `json:"response_text"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("plan db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS plan_runs (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL DEFAULT '',
			goal TEXT NOT NULL,
			status TEXT NOT NULL,
			response_text TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			created_at_utc TEXT NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_plan_runs_session ON plan_runs(session_id, created_at_utc);",
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun records a terminal run. Saving the same run id twice overwrites the
// earlier row.
func (s *Store) SaveRun(rec plan.RunRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO plan_runs (id, session_id, goal, status, response_text, error, created_at_utc)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id=excluded.session_id,
			goal=excluded.goal,
			status=excluded.status,
			response_text=excluded.response_text,
			error=excluded.error`,
		rec.ID, rec.SessionID, rec.Goal, rec.Status, rec.ResponseText, rec.Error, now,
	)
	return err
}

func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT id, session_id, goal, status, response_text, error, created_at_utc
		FROM plan_runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return r, err
}

// ListBySession returns a session's runs, newest first.
func (s *Store) ListBySession(sessionID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, session_id, goal, status, response_text, error, created_at_utc
		FROM plan_runs WHERE session_id = ?
		ORDER BY created_at_utc DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var created string
	if err := row.Scan(&r.ID, &r.SessionID, &r.Goal, &r.Status, &r.ResponseText, &r.Error, &created); err != nil {
		return Run{}, err
	}
	createdAt, _ := time.Parse(time.RFC3339, created)
	r.CreatedAt = createdAt
	return r, nil
}
