package watchlist

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/metrics"
	"github.com/vmunix/flickstream/internal/tmdb"
)

// Item is one watchlist movie enriched with region providers and runtime.
type Item struct {
	ID           int64                 `json:"id"`
	Title        string                `json:"title"`
	Overview     string                `json:"overview"`
	PosterPath   string                `json:"poster_path,omitempty"`
	BackdropPath string                `json:"backdrop_path,omitempty"`
	ReleaseDate  string                `json:"release_date"`
	Year         int                   `json:"year,omitempty"`
	VoteAverage  float64               `json:"vote_average"`
	GenreIDs     []int                 `json:"genre_ids"`
	Genres       []string              `json:"genres"`
	Providers    *tmdb.RegionProviders `json:"providers,omitempty"`
	StreamingOn  []string              `json:"streaming_on"`
	Runtime      *int                  `json:"runtime"`

	// Position in the upstream watchlist (newest addition first).
	Position int `json:"position"`

	ProvidersStale bool `json:"providers_stale,omitempty"`
	RuntimeStale   bool `json:"runtime_stale,omitempty"`
}

// ViewRequest selects the account, region and filtering for View.
type ViewRequest struct {
	AccountID string
	Region    string
	Filter    Filter
}

// View is the merged, filtered watchlist.
type View struct {
	AccountID string    `json:"account_id"`
	Region    string    `json:"region"`
	Items     []Item    `json:"items"`
	Total     int       `json:"total"` // before filtering
	CachedAt  time.Time `json:"cached_at"`
	Stale     bool      `json:"stale"`
}

// ProvidersFor returns providers for each movie. Fresh entries come from
// one batch read; stale and missing ones are refreshed in parallel. A movie
// whose providers are unavailable is left out of the result; only store
// errors fail the call.
func (s *Service) ProvidersFor(ctx context.Context, movieIDs []int64) (map[int64]Result[tmdb.ProviderRegions], error) {
	return forEach(ctx, s, batch[tmdb.ProviderRegions]{
		kind:     "providers",
		window:   s.settings.ProvidersWindow,
		loadMany: s.store.ProvidersMany,
		get:      s.Providers,
	}, movieIDs)
}

// DetailsFor returns runtimes for each movie with the same per-movie
// independence as ProvidersFor.
func (s *Service) DetailsFor(ctx context.Context, movieIDs []int64) (map[int64]Result[*int], error) {
	return forEach(ctx, s, batch[*int]{
		kind:     "details",
		window:   s.settings.DetailsWindow,
		loadMany: s.store.DetailsMany,
		get:      s.Details,
	}, movieIDs)
}

// batch binds a per-movie resource to its bulk cache read.
type batch[V any] struct {
	kind     string
	window   time.Duration
	loadMany func(ctx context.Context, ids []int64) (map[int64]cache.Entry[V], error)
	get      func(ctx context.Context, id int64) (Result[V], error)
}

func forEach[V any](ctx context.Context, s *Service, b batch[V], ids []int64) (map[int64]Result[V], error) {
	ids = dedupe(ids)
	cached, err := b.loadMany(ctx, ids)
	if err != nil {
		metrics.RecordCacheLookup(b.kind, metrics.OutcomeStoreError)
		return nil, err
	}

	now := s.now()
	results := make(map[int64]Result[V], len(ids))
	var stale []int64
	for _, id := range ids {
		if e, ok := cached[id]; ok && e.Fresh(b.window, now) {
			metrics.RecordCacheLookup(b.kind, metrics.OutcomeFresh)
			results[id] = Result[V]{Value: e.Value, CachedAt: e.CachedAt}
			continue
		}
		stale = append(stale, id)
	}
	if len(stale) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Concurrency)
	for _, id := range stale {
		g.Go(func() error {
			res, err := b.get(gctx, id)
			if errors.Is(err, ErrDataUnavailable) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// View returns the account watchlist enriched with providers for region
// and runtimes, filtered and sorted per req.Filter. It fails with
// ErrDataUnavailable only when the watchlist itself cannot be served.
func (s *Service) View(ctx context.Context, req ViewRequest) (*View, error) {
	if req.AccountID == "" {
		req.AccountID = s.settings.AccountID
	}
	if req.Region == "" {
		req.Region = s.settings.Region
	}

	wl, err := s.Watchlist(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(wl.Value))
	for i, m := range wl.Value {
		ids[i] = m.ID
	}

	var (
		providers map[int64]Result[tmdb.ProviderRegions]
		details   map[int64]Result[*int]
		genres    map[int]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		providers, err = s.ProvidersFor(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		details, err = s.DetailsFor(gctx, ids)
		return err
	})
	g.Go(func() error {
		genres = s.Genres(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(wl.Value))
	for i, m := range wl.Value {
		item := Item{
			ID:           m.ID,
			Title:        m.Title,
			Overview:     m.Overview,
			PosterPath:   m.PosterPath,
			BackdropPath: m.BackdropPath,
			ReleaseDate:  m.ReleaseDate,
			Year:         m.Year(),
			VoteAverage:  m.VoteAverage,
			GenreIDs:     m.GenreIDs,
			Genres:       GenreNames(m, genres),
			StreamingOn:  []string{},
			Position:     i,
		}
		if item.GenreIDs == nil {
			item.GenreIDs = []int{}
		}
		if p, ok := providers[m.ID]; ok {
			item.Providers = p.Value.Region(req.Region)
			if names := p.Value.FlatrateNames(req.Region); names != nil {
				item.StreamingOn = names
			}
			item.ProvidersStale = p.Stale
		}
		if d, ok := details[m.ID]; ok {
			item.Runtime = d.Value
			item.RuntimeStale = d.Stale
		}
		items = append(items, item)
	}

	return &View{
		AccountID: req.AccountID,
		Region:    req.Region,
		Items:     req.Filter.Apply(items),
		Total:     len(items),
		CachedAt:  wl.CachedAt,
		Stale:     wl.Stale,
	}, nil
}

// GenreNames prefers names stored with the movie and falls back to the
// TMDB genre list, using "Unknown" for IDs it doesn't know.
func GenreNames(m tmdb.WatchlistMovie, genres map[int]string) []string {
	if len(m.Genres) > 0 {
		return m.Genres
	}
	names := make([]string, 0, len(m.GenreIDs))
	for _, id := range m.GenreIDs {
		name, ok := genres[id]
		if !ok {
			name = "Unknown"
		}
		names = append(names, name)
	}
	return names
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
