// Package store persists the community in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/autopneuma/pneuma/internal/domain"
)

//go:embed schema.sql
var schema string

// Store implements the domain repositories on a single SQLite database
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ domain.PostRepository    = (*Store)(nil)
	_ domain.PrayerRepository  = (*Store)(nil)
	_ domain.ProjectRepository = (*Store)(nil)
	_ domain.ProfileRepository = (*Store)(nil)
	_ domain.MetricsRepository = (*Store)(nil)
	_ domain.ToolRepository    = (*Store)(nil)
	_ domain.ModerationLog     = (*Store)(nil)
)

// New opens the database at dbPath (":memory:" for tests) and applies the schema
func New(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers anyway; one connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database answers
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func newID() string {
	return uuid.New().String()
}

// withTx runs fn in a transaction, rolling back on error
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// notFound maps sql.ErrNoRows to domain.ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

// JSON columns hold tags, schemas and tool payloads.

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(b), nil
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	return encodeJSON(list)
}

func decodeList(raw string) ([]string, error) {
	list := []string{}
	if raw == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode list column: %w", err)
	}
	return list, nil
}

func decodeObject(raw string) (map[string]any, error) {
	obj := map[string]any{}
	if raw == "" || raw == "null" {
		return obj, nil
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("decode object column: %w", err)
	}
	return obj, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

type scanner interface {
	Scan(dest ...any) error
}
