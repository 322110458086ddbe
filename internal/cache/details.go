package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Details returns the cached runtime for a movie regardless of age.
// A nil Value means TMDB reported no runtime.
func (s *Store) Details(ctx context.Context, movieID int64) (Entry[*int], bool, error) {
	var (
		runtime  sql.NullInt64
		cachedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT runtime, cached_at FROM movie_details_cache WHERE movie_id = ?", movieID,
	).Scan(&runtime, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry[*int]{}, false, nil
	}
	if err != nil {
		return Entry[*int]{}, false, storeErr("get details", err)
	}
	return Entry[*int]{Value: nullableInt(runtime), CachedAt: cachedAt}, true, nil
}

// DetailsMany returns cached runtime entries for the given movies.
func (s *Store) DetailsMany(ctx context.Context, movieIDs []int64) (map[int64]Entry[*int], error) {
	result := make(map[int64]Entry[*int], len(movieIDs))
	for _, batch := range batches(movieIDs) {
		rows, err := s.db.QueryContext(ctx,
			"SELECT movie_id, runtime, cached_at FROM movie_details_cache WHERE movie_id IN ("+placeholders(len(batch))+")",
			int64Args(batch)...,
		)
		if err != nil {
			return nil, storeErr("get details", err)
		}
		for rows.Next() {
			var (
				id       int64
				runtime  sql.NullInt64
				cachedAt time.Time
			)
			if err := rows.Scan(&id, &runtime, &cachedAt); err != nil {
				_ = rows.Close()
				return nil, storeErr("scan details", err)
			}
			result[id] = Entry[*int]{Value: nullableInt(runtime), CachedAt: cachedAt}
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, storeErr("get details", err)
		}
	}
	return result, nil
}

// PutDetails upserts the runtime for a movie, stamped now.
func (s *Store) PutDetails(ctx context.Context, movieID int64, runtime *int) (Entry[*int], error) {
	var value sql.NullInt64
	if runtime != nil {
		value = sql.NullInt64{Int64: int64(*runtime), Valid: true}
	}

	now := s.stamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO movie_details_cache (movie_id, runtime, cached_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(movie_id) DO UPDATE SET runtime = excluded.runtime, cached_at = excluded.cached_at`,
		movieID, value, now,
	)
	if err != nil {
		return Entry[*int]{}, storeErr("put details", err)
	}
	return Entry[*int]{Value: runtime, CachedAt: now}, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
