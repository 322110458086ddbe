package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/vmunix/flickstream/internal/tmdb"
)

// Watchlist returns the cached watchlist for an account regardless of age.
// ok is false when nothing is cached or the stored payload is unreadable.
func (s *Store) Watchlist(ctx context.Context, accountID string) (Entry[[]tmdb.WatchlistMovie], bool, error) {
	var (
		data     string
		cachedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT data, cached_at FROM watchlist_cache WHERE account_id = ?", accountID,
	).Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry[[]tmdb.WatchlistMovie]{}, false, nil
	}
	if err != nil {
		return Entry[[]tmdb.WatchlistMovie]{}, false, storeErr("get watchlist", err)
	}

	var movies []tmdb.WatchlistMovie
	if err := json.Unmarshal([]byte(data), &movies); err != nil {
		return Entry[[]tmdb.WatchlistMovie]{}, false, nil
	}
	return Entry[[]tmdb.WatchlistMovie]{Value: movies, CachedAt: cachedAt}, true, nil
}

// PutWatchlist upserts the watchlist for an account, stamped now.
func (s *Store) PutWatchlist(ctx context.Context, accountID string, movies []tmdb.WatchlistMovie) (Entry[[]tmdb.WatchlistMovie], error) {
	if movies == nil {
		movies = []tmdb.WatchlistMovie{}
	}
	data, err := json.Marshal(movies)
	if err != nil {
		return Entry[[]tmdb.WatchlistMovie]{}, storeErr("encode watchlist", err)
	}

	now := s.stamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO watchlist_cache (account_id, data, cached_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET data = excluded.data, cached_at = excluded.cached_at`,
		accountID, string(data), now,
	)
	if err != nil {
		return Entry[[]tmdb.WatchlistMovie]{}, storeErr("put watchlist", err)
	}
	return Entry[[]tmdb.WatchlistMovie]{Value: movies, CachedAt: now}, nil
}
