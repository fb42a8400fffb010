// Package store keeps summary history and dashboard settings in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
)

var ErrNotFound = errors.New("history item not found")

const defaultMaxItems = 20

// Options configures Open.
type Options struct {
	Path          string
	MaxItems      int
	DefaultPrompt string
}

// Store wraps the SQLite database.
type Store struct {
	db            *sql.DB
	maxItems      int
	defaultPrompt string
	log           logger.Logger
	clock         func() time.Time
}

// Open creates the database file and schema when needed.
func Open(ctx context.Context, opts Options, log logger.Logger) (*Store, error) {
	dir := filepath.Dir(opts.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", opts.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if opts.MaxItems <= 0 {
		opts.MaxItems = defaultMaxItems
	}

	s := &Store{
		db:            db,
		maxItems:      opts.MaxItems,
		defaultPrompt: opts.DefaultPrompt,
		log:           log,
		clock:         time.Now,
	}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS history (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    filename TEXT NOT NULL,
    summary TEXT NOT NULL,
    transcript TEXT NOT NULL DEFAULT '',
    youtube_url TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
