package v1

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/flickstream/internal/tmdb"
	"github.com/vmunix/flickstream/internal/watchlist"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Viewer serves cache-backed watchlist data.
type Viewer interface {
	Watchlist(ctx context.Context, accountID string) (watchlist.Result[[]tmdb.WatchlistMovie], error)
	View(ctx context.Context, req watchlist.ViewRequest) (*watchlist.View, error)
	ProvidersFor(ctx context.Context, movieIDs []int64) (map[int64]watchlist.Result[tmdb.ProviderRegions], error)
	DetailsFor(ctx context.Context, movieIDs []int64) (map[int64]watchlist.Result[*int], error)
	Genres(ctx context.Context) map[int]string
	StreamingServices(ctx context.Context, region string) watchlist.Services
	CacheStats(ctx context.Context) (*watchlist.CacheStats, error)
	ClearCache(ctx context.Context) (map[string]int64, error)
	Settings() watchlist.Settings
}

// Prober checks TMDB connectivity for the debug endpoint, bypassing the cache.
type Prober interface {
	Ping(ctx context.Context) error
	WatchlistPage(ctx context.Context, accountID string, page int) (*tmdb.WatchlistPage, error)
}

// Pinger is a health-checked dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DebugConfig is the configuration summary shown by the debug endpoint.
// It never carries secrets.
type DebugConfig struct {
	APIKeySet      bool    `json:"tmdb_api_key_set"`
	APIKeyLength   int     `json:"tmdb_api_key_length"`
	AccountID      string  `json:"tmdb_account_id"`
	AccountIDSet   bool    `json:"tmdb_account_id_set"`
	AuthMethod     string  `json:"auth_method"`
	Region         string  `json:"region"`
	DBPath         string  `json:"db_path"`
	WatchlistHours float64 `json:"watchlist_cache_hours"`
	ProvidersHours float64 `json:"providers_cache_hours"`
	DetailsHours   float64 `json:"details_cache_hours"`
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Service Viewer

	// Optional dependencies (nil if not configured)
	Prober Prober // TMDB probe for /debug
	Store  Pinger // cache database health for /status
	Log    *slog.Logger

	Debug   DebugConfig
	Version string
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Service == nil {
		return errors.New("watchlist service is required")
	}
	return nil
}
