package params

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Register driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS params (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);`

// SQLiteEngine stores parameters in a single table. Change notifications are
// raised in-process after each committed write.
type SQLiteEngine struct {
	db   *sql.DB
	path string

	mu          sync.RWMutex
	subscribers []func(string)
}

func NewSQLiteEngine(path string) (*SQLiteEngine, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// One writer avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;", sqliteSchema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialise sqlite db: %w", err)
		}
	}

	return &SQLiteEngine{db: db, path: path}, nil
}

func (s *SQLiteEngine) Get(key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(context.Background(), "SELECT value FROM params WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", key, err)
	}
	return v, true, nil
}

func (s *SQLiteEngine) Put(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(context.Background(),
		`INSERT OR REPLACE INTO params (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC())
	if err != nil {
		return unavailable("put", key, err)
	}
	s.notify(key)
	return nil
}

func (s *SQLiteEngine) Remove(key string) error {
	res, err := s.db.ExecContext(context.Background(), "DELETE FROM params WHERE key = ?", key)
	if err != nil {
		return unavailable("remove", key, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notify(key)
	}
	return nil
}

func (s *SQLiteEngine) List() ([]string, error) {
	rows, err := s.db.QueryContext(context.Background(), "SELECT key FROM params ORDER BY key")
	if err != nil {
		return nil, unavailable("list", "", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, unavailable("list", "", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list", "", err)
	}
	return keys, nil
}

func (s *SQLiteEngine) Path(key string) string {
	return s.path + "#" + key
}

func (s *SQLiteEngine) Subscribe(fn func(string)) error {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
	return nil
}

func (s *SQLiteEngine) notify(key string) {
	s.mu.RLock()
	subs := make([]func(string), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(key)
	}
}

func (s *SQLiteEngine) Close() error {
	return s.db.Close()
}
