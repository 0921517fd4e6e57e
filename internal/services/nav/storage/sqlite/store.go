// Package sqlite implements the nav storage contract on a local SQLite
// database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/millennium-tools/banav/internal/platform/storage/sqlitemigrate"
	"github.com/millennium-tools/banav/internal/services/nav/storage"
	"github.com/millennium-tools/banav/internal/services/nav/storage/sqlite/migrations"
)

// schemaVersion is recorded in SQLite's user_version pragma after
// migrations run.
const schemaVersion = 2

// Store is a SQLite-backed key/value store.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens (creating if necessary) the database at path and applies
// migrations. The schema is provisioned lazily on first open rather than at
// install time.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	if err := sqlitemigrate.Apply(db, migrations.FS); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if err := sqlitemigrate.SetUserVersion(db, schemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, reporting ok=false when absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM main WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO main (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// GetOrInit returns the value stored under key, persisting def first when the
// key is absent. INSERT OR IGNORE keeps concurrent initializers from
// clobbering an existing value.
func (s *Store) GetOrInit(ctx context.Context, key string, def []byte) ([]byte, error) {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO main (key, value) VALUES (?, ?)`, key, def)
	if err != nil {
		return nil, fmt.Errorf("init %q: %w", key, err)
	}

	var value []byte
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM main WHERE key = ?`, key).Scan(&value); err != nil {
		return nil, fmt.Errorf("get %q after init: %w", key, err)
	}
	return value, nil
}
