// Package sqlite persists session flags and latest compliance checks in a
// single SQLite file.
package sqlite

import (
	"compliance_checker/internal/domain"
	"compliance_checker/internal/repository"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
  client_id  TEXT PRIMARY KEY,
  state      TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS checks (
  client_id   TEXT PRIMARY KEY,
  check_id    TEXT NOT NULL,
  checked_at  TEXT NOT NULL,
  report_json TEXT NOT NULL
);
`

var (
	_ repository.SessionRepository = (*Store)(nil)
	_ repository.CheckRepository   = (*Store)(nil)
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if missing) the database at path and applies the
// schema. Use ":memory:" only with a single connection.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) GetState(ctx context.Context, clientID string) (domain.SessionState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM sessions WHERE client_id = ?`, clientID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionUnset, nil
	}
	if err != nil {
		return "", fmt.Errorf("get session %s: %w", clientID, err)
	}
	return domain.ParseSessionState(raw)
}

func (s *Store) SetState(ctx context.Context, clientID string, state domain.SessionState) error {
	if _, err := domain.ParseSessionState(string(state)); err != nil {
		return fmt.Errorf("client %s: %w", clientID, err)
	}

	if state == domain.SessionUnset {
		_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE client_id = ?`, clientID)
		if err != nil {
			return fmt.Errorf("clear session %s: %w", clientID, err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (client_id, state, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(client_id) DO UPDATE SET state=excluded.state, updated_at=excluded.updated_at`,
		clientID, string(state), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set session %s: %w", clientID, err)
	}
	return nil
}

func (s *Store) SaveLatest(ctx context.Context, report *domain.CheckReport) error {
	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode check %s: %w", report.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checks (client_id, check_id, checked_at, report_json) VALUES (?, ?, ?, ?)
         ON CONFLICT(client_id) DO UPDATE SET check_id=excluded.check_id, checked_at=excluded.checked_at, report_json=excluded.report_json`,
		report.ClientID, report.ID, report.CheckedAt.UTC().Format(time.RFC3339Nano), string(b),
	)
	if err != nil {
		return fmt.Errorf("save check %s: %w", report.ID, err)
	}
	return nil
}

func (s *Store) GetLatest(ctx context.Context, clientID string) (*domain.CheckReport, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT report_json FROM checks WHERE client_id = ?`, clientID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: check for client %s", repository.ErrNotFound, clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("get check for client %s: %w", clientID, err)
	}

	var report domain.CheckReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("decode check for client %s: %w", clientID, err)
	}
	if report.Matches == nil {
		report.Matches = []domain.ComplianceMatch{}
	}
	return &report, nil
}
