package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/vmunix/flickstream/internal/tmdb"
)

// maxBatch keeps IN (...) lists well under SQLite's variable limit.
const maxBatch = 500

// Providers returns the cached watch providers for a movie regardless of age.
func (s *Store) Providers(ctx context.Context, movieID int64) (Entry[tmdb.ProviderRegions], bool, error) {
	var (
		data     string
		cachedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT data, cached_at FROM providers_cache WHERE movie_id = ?", movieID,
	).Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry[tmdb.ProviderRegions]{}, false, nil
	}
	if err != nil {
		return Entry[tmdb.ProviderRegions]{}, false, storeErr("get providers", err)
	}

	regions, ok := decodeProviders(data)
	if !ok {
		return Entry[tmdb.ProviderRegions]{}, false, nil
	}
	return Entry[tmdb.ProviderRegions]{Value: regions, CachedAt: cachedAt}, true, nil
}

// ProvidersMany returns cached provider entries for the given movies.
// Movies without a readable entry are absent from the map.
func (s *Store) ProvidersMany(ctx context.Context, movieIDs []int64) (map[int64]Entry[tmdb.ProviderRegions], error) {
	result := make(map[int64]Entry[tmdb.ProviderRegions], len(movieIDs))
	for _, batch := range batches(movieIDs) {
		rows, err := s.db.QueryContext(ctx,
			"SELECT movie_id, data, cached_at FROM providers_cache WHERE movie_id IN ("+placeholders(len(batch))+")",
			int64Args(batch)...,
		)
		if err != nil {
			return nil, storeErr("get providers", err)
		}
		for rows.Next() {
			var (
				id       int64
				data     string
				cachedAt time.Time
			)
			if err := rows.Scan(&id, &data, &cachedAt); err != nil {
				_ = rows.Close()
				return nil, storeErr("scan providers", err)
			}
			if regions, ok := decodeProviders(data); ok {
				result[id] = Entry[tmdb.ProviderRegions]{Value: regions, CachedAt: cachedAt}
			}
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, storeErr("get providers", err)
		}
	}
	return result, nil
}

// PutProviders upserts the watch providers for a movie, stamped now.
func (s *Store) PutProviders(ctx context.Context, movieID int64, regions tmdb.ProviderRegions) (Entry[tmdb.ProviderRegions], error) {
	if regions == nil {
		regions = tmdb.ProviderRegions{}
	}
	data, err := json.Marshal(regions)
	if err != nil {
		return Entry[tmdb.ProviderRegions]{}, storeErr("encode providers", err)
	}

	now := s.stamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO providers_cache (movie_id, data, cached_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(movie_id) DO UPDATE SET data = excluded.data, cached_at = excluded.cached_at`,
		movieID, string(data), now,
	)
	if err != nil {
		return Entry[tmdb.ProviderRegions]{}, storeErr("put providers", err)
	}
	return Entry[tmdb.ProviderRegions]{Value: regions, CachedAt: now}, nil
}

// AllProviders returns every cached provider payload, fresh or not.
func (s *Store) AllProviders(ctx context.Context) (map[int64]tmdb.ProviderRegions, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT movie_id, data FROM providers_cache")
	if err != nil {
		return nil, storeErr("list providers", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[int64]tmdb.ProviderRegions)
	for rows.Next() {
		var (
			id   int64
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, storeErr("scan providers", err)
		}
		if regions, ok := decodeProviders(data); ok {
			result[id] = regions
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list providers", err)
	}
	return result, nil
}

func decodeProviders(data string) (tmdb.ProviderRegions, bool) {
	var regions tmdb.ProviderRegions
	if err := json.Unmarshal([]byte(data), &regions); err != nil {
		return nil, false
	}
	if regions == nil {
		regions = tmdb.ProviderRegions{}
	}
	return regions, true
}

func batches(ids []int64) [][]int64 {
	var out [][]int64
	for len(ids) > maxBatch {
		out = append(out, ids[:maxBatch])
		ids = ids[maxBatch:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
