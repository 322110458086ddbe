// Package watchlist assembles the cache-backed watchlist view.
//
// Every TMDB resource goes through the same fetch-or-refresh policy: a fresh
// cache entry is returned without touching TMDB; a stale or missing entry
// triggers a synchronous refresh; a failed refresh falls back to whatever is
// stored, however old. Failed refreshes are never cached, so the next request
// for a stale key tries TMDB again.
package watchlist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/tmdb"
)

// ErrDataUnavailable is returned when TMDB failed and nothing is cached.
var ErrDataUnavailable = errors.New("data unavailable")

// Upstream is the subset of the TMDB client the service calls.
//
//go:generate mockgen -destination=mocks/mock_upstream.go -package=mocks github.com/vmunix/flickstream/internal/watchlist Upstream
type Upstream interface {
	Watchlist(ctx context.Context, accountID string) ([]tmdb.WatchlistMovie, error)
	WatchProviders(ctx context.Context, movieID int64) (tmdb.ProviderRegions, error)
	MovieDetails(ctx context.Context, movieID int64) (*tmdb.MovieDetails, error)
	Genres(ctx context.Context) (map[int]string, error)
}

// Store is the cache accessor the service reads and writes through.
type Store interface {
	Watchlist(ctx context.Context, accountID string) (cache.Entry[[]tmdb.WatchlistMovie], bool, error)
	PutWatchlist(ctx context.Context, accountID string, movies []tmdb.WatchlistMovie) (cache.Entry[[]tmdb.WatchlistMovie], error)
	Providers(ctx context.Context, movieID int64) (cache.Entry[tmdb.ProviderRegions], bool, error)
	ProvidersMany(ctx context.Context, movieIDs []int64) (map[int64]cache.Entry[tmdb.ProviderRegions], error)
	PutProviders(ctx context.Context, movieID int64, regions tmdb.ProviderRegions) (cache.Entry[tmdb.ProviderRegions], error)
	Details(ctx context.Context, movieID int64) (cache.Entry[*int], bool, error)
	DetailsMany(ctx context.Context, movieIDs []int64) (map[int64]cache.Entry[*int], error)
	PutDetails(ctx context.Context, movieID int64, runtime *int) (cache.Entry[*int], error)
	AllProviders(ctx context.Context) (map[int64]tmdb.ProviderRegions, error)
	Stats(ctx context.Context) (cache.Stats, error)
	Clear(ctx context.Context) (map[string]int64, error)
}

// Settings is the immutable configuration the service is built with.
type Settings struct {
	AccountID         string
	Region            string
	WatchlistWindow   time.Duration
	ProvidersWindow   time.Duration
	DetailsWindow     time.Duration
	PreferredServices []string
	Concurrency       int // parallel per-movie refreshes
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		Region:          "US",
		WatchlistWindow: 6 * time.Hour,
		ProvidersWindow: 24 * time.Hour,
		DetailsWindow:   24 * time.Hour,
		Concurrency:     10,
	}
}

// Service serves watchlist, provider and runtime data from the cache,
// refreshing from TMDB on demand.
type Service struct {
	upstream Upstream
	store    Store
	settings Settings
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for freshness decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new watchlist service.
func NewService(upstream Upstream, store Store, settings Settings, log *slog.Logger, opts ...Option) *Service {
	if settings.Concurrency <= 0 {
		settings.Concurrency = 10
	}
	settings.PreferredServices = append([]string(nil), settings.PreferredServices...)

	s := &Service{
		upstream: upstream,
		store:    store,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns a copy of the service settings.
func (s *Service) Settings() Settings {
	out := s.settings
	out.PreferredServices = append([]string(nil), s.settings.PreferredServices...)
	return out
}

// Watchlist returns the account's watchlist.
func (s *Service) Watchlist(ctx context.Context, accountID string) (Result[[]tmdb.WatchlistMovie], error) {
	return refresh(ctx, s, resource[[]tmdb.WatchlistMovie]{
		kind:   "watchlist",
		key:    accountID,
		window: s.settings.WatchlistWindow,
		load: func(ctx context.Context) (cache.Entry[[]tmdb.WatchlistMovie], bool, error) {
			return s.store.Watchlist(ctx, accountID)
		},
		fetch: func(ctx context.Context) ([]tmdb.WatchlistMovie, error) {
			return s.upstream.Watchlist(ctx, accountID)
		},
		save: func(ctx context.Context, movies []tmdb.WatchlistMovie) (cache.Entry[[]tmdb.WatchlistMovie], error) {
			return s.store.PutWatchlist(ctx, accountID, movies)
		},
	})
}

// Providers returns the watch providers for a movie in every region.
func (s *Service) Providers(ctx context.Context, movieID int64) (Result[tmdb.ProviderRegions], error) {
	return refresh(ctx, s, resource[tmdb.ProviderRegions]{
		kind:   "providers",
		key:    movieID,
		window: s.settings.ProvidersWindow,
		load: func(ctx context.Context) (cache.Entry[tmdb.ProviderRegions], bool, error) {
			return s.store.Providers(ctx, movieID)
		},
		fetch: func(ctx context.Context) (tmdb.ProviderRegions, error) {
			return s.upstream.WatchProviders(ctx, movieID)
		},
		save: func(ctx context.Context, regions tmdb.ProviderRegions) (cache.Entry[tmdb.ProviderRegions], error) {
			return s.store.PutProviders(ctx, movieID, regions)
		},
	})
}

// Details returns the runtime of a movie in minutes; nil when TMDB has none.
func (s *Service) Details(ctx context.Context, movieID int64) (Result[*int], error) {
	return refresh(ctx, s, resource[*int]{
		kind:   "details",
		key:    movieID,
		window: s.settings.DetailsWindow,
		load: func(ctx context.Context) (cache.Entry[*int], bool, error) {
			return s.store.Details(ctx, movieID)
		},
		fetch: func(ctx context.Context) (*int, error) {
			movie, err := s.upstream.MovieDetails(ctx, movieID)
			if err != nil {
				return nil, err
			}
			return movie.Runtime, nil
		},
		save: func(ctx context.Context, runtime *int) (cache.Entry[*int], error) {
			return s.store.PutDetails(ctx, movieID, runtime)
		},
	})
}

// Genres returns genre names by ID. A TMDB failure yields an empty map:
// genre names are decoration, never a reason to fail a request.
func (s *Service) Genres(ctx context.Context) map[int]string {
	genres, err := s.upstream.Genres(ctx)
	if err != nil {
		if s.log != nil {
			s.log.Warn("failed to fetch genres", "error", err)
		}
		return map[int]string{}
	}
	return genres
}
