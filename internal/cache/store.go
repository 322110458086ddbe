// Package cache provides the SQLite-backed response cache for TMDB data.
//
// Three tables hold one row per key: the account watchlist, per-movie watch
// providers and per-movie runtime. Rows carry the time they were written;
// freshness is decided at read time against a caller-supplied window, so a
// window change takes effect without touching stored data.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vmunix/flickstream/internal/migrations"
)

// ErrStore wraps every persistence failure.
var ErrStore = errors.New("cache store error")

// Entry is a cached value and the time it was written.
type Entry[T any] struct {
	Value    T
	CachedAt time.Time
}

// Fresh reports whether the entry is still inside window at now.
func (e Entry[T]) Fresh(window time.Duration, now time.Time) bool {
	return IsFresh(e.CachedAt, window, now)
}

// IsFresh reports whether now - cachedAt < window. An entry exactly window
// old is stale.
func IsFresh(cachedAt time.Time, window time.Duration, now time.Time) bool {
	return now.Sub(cachedAt) < window
}

// Store provides access to the cache tables.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp cached_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New wraps an already migrated database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens (creating if needed) the SQLite file at path and applies the
// schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", ErrStore, err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, opts...), nil
}

// Migrate applies the cache schema. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, migrations.InitialSQL); err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrStore, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
