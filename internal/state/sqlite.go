package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; the app never needs more.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_slots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_ts TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS lesson_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			course_id TEXT NOT NULL,
			unit_index INTEGER NOT NULL,
			lesson_index INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			xp_awarded INTEGER NOT NULL DEFAULT 0,
			hint_used INTEGER NOT NULL DEFAULT 0,
			retry_count INTEGER NOT NULL DEFAULT 0,
			attempt_ts TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS lesson_attempts_course ON lesson_attempts(course_id, unit_index, lesson_index);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ReadSlot returns nil, nil when the slot has never been written.
func (s *SQLiteStore) ReadSlot(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM state_slots WHERE key = ?`, strings.TrimSpace(key))
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(value), nil
}

// WriteSlot replaces the whole slot in a single statement.
func (s *SQLiteStore) WriteSlot(ctx context.Context, key string, value []byte, at time.Time) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("slot key is required")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state_slots(key, value, updated_ts) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_ts = excluded.updated_ts
	`, key, string(value), at.UTC().Format(timeLayout))
	return err
}

func (s *SQLiteStore) DeleteSlot(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM state_slots WHERE key = ?`, strings.TrimSpace(key))
	return err
}

func (s *SQLiteStore) RecordAttempt(ctx context.Context, a Attempt) error {
	ts := a.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lesson_attempts(session_id, course_id, unit_index, lesson_index, correct, xp_awarded, hint_used, retry_count, attempt_ts)
		VALUES(?,?,?,?,?,?,?,?,?)
	`,
		a.SessionID,
		a.CourseID,
		a.UnitIndex,
		a.LessonIndex,
		ifThen(a.Correct, 1, 0),
		max(0, a.XPAwarded),
		ifThen(a.HintUsed, 1, 0),
		max(0, a.RetryCount),
		ts.UTC().Format(timeLayout),
	)
	return err
}

func (s *SQLiteStore) ClearAttempts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lesson_attempts`)
	return err
}

func (s *SQLiteStore) GetSummary(ctx context.Context) (Summary, error) {
	var (
		out    Summary
		lastTS sql.NullString
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as attempts,
			COALESCE(SUM(correct),0) as correct,
			COALESCE(SUM(hint_used),0) as hints,
			COALESCE(SUM(xp_awarded),0) as xp,
			COUNT(DISTINCT session_id) as sessions,
			MAX(attempt_ts) as last_ts
		FROM lesson_attempts
	`)
	if err := row.Scan(&out.Attempts, &out.Correct, &out.HintsUsed, &out.XPAwarded, &out.Sessions, &lastTS); err != nil {
		return Summary{}, err
	}
	if lastTS.Valid {
		if t, err := time.Parse(timeLayout, lastTS.String); err == nil {
			out.LastTS = t
		}
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func ifThen(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
