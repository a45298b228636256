package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/race-explorer/racegraph/execution"
)

// MySQLStore is a MySQL/MariaDB-backed Store, for scenario registries
// shared across processes or survived across restarts.
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore opens a MySQL connection using dsn (see
// github.com/go-sql-driver/mysql for DSN syntax) and ensures the scenarios
// table exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("scenario: open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scenario: ping mysql: %w", err)
	}

	store := &MySQLStore{db: db}
	if err := store.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *MySQLStore) createTable(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS scenarios (
			name           VARCHAR(255) PRIMARY KEY,
			factory_key    VARCHAR(255) NOT NULL,
			seed_path_json TEXT NOT NULL,
			created_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("scenario: create scenarios table: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *MySQLStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pathJSON, err := json.Marshal(rec.SeedPath)
	if err != nil {
		return fmt.Errorf("scenario: marshal seed path: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (name, factory_key, seed_path_json)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			factory_key = VALUES(factory_key),
			seed_path_json = VALUES(seed_path_json)
	`, rec.Name, rec.FactoryKey, string(pathJSON))
	if err != nil {
		return fmt.Errorf("scenario: save %q: %w", rec.Name, err)
	}
	return nil
}

// Load implements Store.
func (s *MySQLStore) Load(ctx context.Context, name string) (Record, error) {
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
func (s *MySQLStore) List(ctx context.Context) ([]string, error) {
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
func (s *MySQLStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?`, name); err != nil {
		return fmt.Errorf("scenario: delete %q: %w", name, err)
	}
	return nil
}

// Close releases the underlying connection pool. Safe to call more than
// once.
func (s *MySQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
