package config

import (
	"log/slog"
	"time"

	"github.com/vmunix/flickstream/internal/tmdb"
	"github.com/vmunix/flickstream/internal/watchlist"
)

// Hours converts a fractional hour count to a duration.
func Hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// TMDBOptions returns the client options for the configured TMDB account.
func (c *Config) TMDBOptions(log *slog.Logger) []tmdb.Option {
	return []tmdb.Option{
		tmdb.WithBaseURL(c.TMDB.BaseURL),
		tmdb.WithAuthMethod(tmdb.AuthMethod(c.TMDB.AuthMethod)),
		tmdb.WithTimeout(c.TMDB.Timeout),
		tmdb.WithRateLimit(c.TMDB.RequestsPerSecond, c.TMDB.Burst),
		tmdb.WithLogger(log),
	}
}

// WatchlistSettings returns the service settings.
func (c *Config) WatchlistSettings() watchlist.Settings {
	return watchlist.Settings{
		AccountID:         c.TMDB.AccountID,
		Region:            c.Viewer.Region,
		WatchlistWindow:   Hours(c.Cache.WatchlistHours),
		ProvidersWindow:   Hours(c.Cache.ProvidersHours),
		DetailsWindow:     Hours(c.Cache.DetailsHours),
		PreferredServices: append([]string(nil), c.Viewer.StreamingServices...),
		Concurrency:       c.Cache.Concurrency,
	}
}
