package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/lessonflow/pkg/domain"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("store closed")

// Store implements ports.FlowStore on SQLite.
// It is suitable for single-process use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// New opens (or creates) the database at path.
// The path should be a file path (e.g., "./flows.db") or ":memory:" for testing.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS flows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			data BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Store{db: db}, nil
}

// Save implements ports.FlowStore.
func (s *Store) Save(ctx context.Context, flow domain.FlowFile) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("marshal flow: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flows (id, name, version, updated_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			updated_at = excluded.updated_at,
			data = excluded.data
	`, flow.ID, flow.Name, flow.Version, time.Now().UTC().Format(time.RFC3339Nano), data)
	if err != nil {
		return fmt.Errorf("save flow: %w", err)
	}
	return nil
}

// Load implements ports.FlowStore.
func (s *Store) Load(ctx context.Context, id string) (domain.FlowFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.FlowFile{}, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM flows WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FlowFile{}, domain.ErrFlowNotFound
	}
	if err != nil {
		return domain.FlowFile{}, fmt.Errorf("load flow: %w", err)
	}

	var flow domain.FlowFile
	if err := json.Unmarshal(data, &flow); err != nil {
		return domain.FlowFile{}, fmt.Errorf("unmarshal flow: %w", err)
	}
	return flow, nil
}

// Delete implements ports.FlowStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM flows WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete flow: %w", err)
	}
	return nil
}

// List implements ports.FlowStore. Ids are ordered by last save, newest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM flows ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan flow id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flows: %w", err)
	}
	return ids, nil
}

// Close releases the database. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
