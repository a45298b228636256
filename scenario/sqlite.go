package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/race-explorer/racegraph/execution"
)

// SQLiteStore is a SQLite-backed Store, for local persistence with zero
// setup: a single file, auto-migrated on first use, WAL mode for
// concurrent reads.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (creating if necessary) a SQLite database at path
// and ensures the scenarios table exists. path may be ":memory:" for a
// process-local, non-durable store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("scenario: %s: %w", pragma, err)
		}
	}

	store := &SQLiteStore{db: db}
	if err := store.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) createTable(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS scenarios (
			name           TEXT PRIMARY KEY,
			factory_key    TEXT NOT NULL,
			seed_path_json TEXT NOT NULL,
			created_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("scenario: create scenarios table: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathJSON, err := json.Marshal(rec.SeedPath)
	if err != nil {
		return fmt.Errorf("scenario: marshal seed path: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (name, factory_key, seed_path_json)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			factory_key = excluded.factory_key,
			seed_path_json = excluded.seed_path_json,
			updated_at = CURRENT_TIMESTAMP
	`, rec.Name, rec.FactoryKey, string(pathJSON))
	if err != nil {
		return fmt.Errorf("scenario: save %q: %w", rec.Name, err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, name string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var factoryKey, pathJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT factory_key, seed_path_json FROM scenarios WHERE name = ?`, name,
	).Scan(&factoryKey, &pathJSON)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("scenario: load %q: %w", name, err)
	}

	var seedPath execution.Path
	if err := json.Unmarshal([]byte(pathJSON), &seedPath); err != nil {
		return Record{}, fmt.Errorf("scenario: unmarshal seed path for %q: %w", name, err)
	}
	return Record{Name: name, FactoryKey: factoryKey, SeedPath: seedPath}, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("scenario: list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scenario: list scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?`, name); err != nil {
		return fmt.Errorf("scenario: delete %q: %w", name, err)
	}
	return nil
}

// Close releases the underlying database connection. Safe to call more
// than once.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
