package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Table names, also used as stats keys.
const (
	TableWatchlist = "watchlist_cache"
	TableProviders = "providers_cache"
	TableDetails   = "movie_details_cache"
)

var tables = []string{TableWatchlist, TableProviders, TableDetails}

// TableStats summarizes one cache table.
type TableStats struct {
	Entries int        `json:"cached_entries"`
	Latest  *time.Time `json:"latest_cache,omitempty"`
}

// Stats holds per-table statistics keyed by table name.
type Stats map[string]TableStats

// Stats reports entry counts and the newest cached_at per table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := make(Stats, len(tables))
	for _, table := range tables {
		var ts TableStats
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&ts.Entries); err != nil {
			return nil, storeErr("count "+table, err)
		}

		var latest time.Time
		err := s.db.QueryRowContext(ctx,
			"SELECT cached_at FROM "+table+" ORDER BY cached_at DESC LIMIT 1",
		).Scan(&latest)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, storeErr("latest "+table, err)
		default:
			ts.Latest = &latest
		}
		stats[table] = ts
	}
	return stats, nil
}

// Clear deletes every row from every cache table in one transaction and
// returns the number of rows removed per table.
func (s *Store) Clear(ctx context.Context) (map[string]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin clear", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleted := make(map[string]int64, len(tables))
	for _, table := range tables {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return nil, storeErr("clear "+table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, storeErr("clear "+table, err)
		}
		deleted[table] = n
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit clear", err)
	}
	return deleted, nil
}
