package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
	"github.com/dmitrijs2005/cvkeeper/internal/client/store/migrations"

	_ "modernc.org/sqlite"
)

// SQLite is the Store implementation backed by a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if necessary) the local state database at dsn and
// applies pending schema migrations.
func Open(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening local state db: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating local state db: %w", err)
	}
	return &SQLite{db: db}, nil
}

// NewSQLite wraps an already-open database. Used by tests that manage the
// connection themselves.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) ReadToken(ctx context.Context) (string, bool, error) {
	value, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return "", false, err
	}
	if len(value) == 0 {
		return "", false, nil
	}
	return string(value), true, nil
}

func (s *SQLite) WriteToken(ctx context.Context, token string) error {
	return s.set(ctx, keyAccessToken, []byte(token))
}

func (s *SQLite) ClearToken(ctx context.Context) error {
	return s.delete(ctx, keyAccessToken)
}

func (s *SQLite) ReadPreferences(ctx context.Context) (models.Preferences, error) {
	var prefs models.Preferences
	value, err := s.get(ctx, keyPreferences)
	if err != nil {
		return prefs, err
	}
	if len(value) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(value, &prefs); err != nil {
		return prefs, fmt.Errorf("decoding preferences: %w", err)
	}
	return prefs, nil
}

func (s *SQLite) WritePreferences(ctx context.Context, prefs models.Preferences) error {
	value, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	return s.set(ctx, keyPreferences, value)
}

// Token adapts the store to the gateway's TokenSource. Read failures are
// treated as absent: a request without a bearer header is still valid,
// the backend just answers 401 where one was required.
func (s *SQLite) Token(ctx context.Context) (string, bool) {
	token, ok, err := s.ReadToken(ctx)
	if err != nil {
		return "", false
	}
	return token, ok
}

func (s *SQLite) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading local_state[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing local_state[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLite) delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_state WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting local_state[%s]: %w", key, err)
	}
	return nil
}
