package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is the durable Store used in production. One process, one
// writer; the busy timeout covers the occasional reader.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // sqlite wants a single writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}

	return &SQLite{db: db}, nil
}

func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  platform TEXT NOT NULL,
  external_id TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  outcome TEXT NOT NULL,
  greeting TEXT NOT NULL DEFAULT '',
  reason TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_applications_key
ON applications(platform, external_id);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_applications_applied_at
ON applications(platform, applied_at);
`); err != nil {
		return err
	}

	// A posting can fail more than once but succeed only once.
	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_succeeded
ON applications(platform, external_id)
WHERE outcome = 'succeeded';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLite) Lookup(ctx context.Context, platform, externalID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT platform, external_id, applied_at, outcome, greeting, reason
FROM applications
WHERE platform = ? AND external_id = ?
ORDER BY id DESC
LIMIT 1;`, platform, externalID)

	var e Entry
	var appliedAt string
	err := row.Scan(&e.Platform, &e.ExternalID, &appliedAt, &e.Outcome, &e.Greeting, &e.Reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.AppliedAt, err = time.Parse(time.RFC3339, appliedAt)
	if err != nil {
		return nil, fmt.Errorf("parse applied_at: %w", err)
	}
	return &e, nil
}

// Append stores applied_at in UTC so the RFC3339 strings compare
// correctly regardless of the offset the caller's clock carries.
func (s *SQLite) Append(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO applications(platform, external_id, applied_at, outcome, greeting, reason)
VALUES(?,?,?,?,?,?);`,
		e.Platform, e.ExternalID, e.AppliedAt.UTC().Format(time.RFC3339), string(e.Outcome), e.Greeting, e.Reason)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

func (s *SQLite) CountSucceededSince(ctx context.Context, platform string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM applications
WHERE platform = ? AND outcome = 'succeeded' AND applied_at >= ?;`,
		platform, since.UTC().Format(time.RFC3339)).Scan(&n)
	return n, err
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
