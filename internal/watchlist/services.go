package watchlist

import (
	"context"
	"slices"
	"time"

	"github.com/vmunix/flickstream/internal/cache"
)

// Where a streaming service list came from.
const (
	SourceConfigured     = "configured"
	SourceAutoDiscovered = "auto-discovered"
	SourceFallback       = "fallback"
)

// fallbackServices is offered when nothing is configured and the cache
// can't be read.
var fallbackServices = []string{
	"Netflix", "Amazon Prime Video", "Disney Plus", "Hulu",
	"HBO Max", "Apple TV Plus", "Paramount Plus", "Peacock",
}

// Services lists streaming services for the filter UI.
type Services struct {
	Services  []string `json:"services"`
	Preferred []string `json:"preferred"`
	Region    string   `json:"region"`
	Source    string   `json:"source"`
}

// StreamingServices returns the configured services first, followed by
// every subscription service seen in cached provider data for region.
func (s *Service) StreamingServices(ctx context.Context, region string) Services {
	if region == "" {
		region = s.settings.Region
	}
	preferred := append([]string{}, s.settings.PreferredServices...)

	all, err := s.store.AllProviders(ctx)
	if err != nil {
		if s.log != nil {
			s.log.Warn("failed to discover streaming services", "error", err)
		}
		if len(preferred) > 0 {
			return Services{Services: preferred, Preferred: preferred, Region: region, Source: SourceConfigured}
		}
		return Services{
			Services:  slices.Clone(fallbackServices),
			Preferred: []string{},
			Region:    region,
			Source:    SourceFallback,
		}
	}

	seen := make(map[string]struct{})
	var discovered []string
	for _, regions := range all {
		for _, name := range regions.FlatrateNames(region) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			discovered = append(discovered, name)
		}
	}
	slices.Sort(discovered)

	if len(preferred) == 0 {
		if discovered == nil {
			discovered = []string{}
		}
		return Services{Services: discovered, Preferred: preferred, Region: region, Source: SourceAutoDiscovered}
	}

	services := slices.Clone(preferred)
	for _, name := range discovered {
		if !slices.Contains(services, name) {
			services = append(services, name)
		}
	}
	return Services{Services: services, Preferred: preferred, Region: region, Source: SourceConfigured}
}

// TableStats describes one cache table and its freshness window.
type TableStats struct {
	Entries     int        `json:"cached_entries"`
	Latest      *time.Time `json:"latest_cache,omitempty"`
	WindowHours float64    `json:"cache_duration_hours"`
}

// CacheStats reports per-resource cache statistics.
type CacheStats struct {
	Watchlist TableStats `json:"watchlist"`
	Providers TableStats `json:"providers"`
	Details   TableStats `json:"movie_details"`
}

// CacheStats reports entry counts, newest write and window per resource.
func (s *Service) CacheStats(ctx context.Context) (*CacheStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	table := func(name string, window time.Duration) TableStats {
		ts := stats[name]
		return TableStats{Entries: ts.Entries, Latest: ts.Latest, WindowHours: window.Hours()}
	}
	return &CacheStats{
		Watchlist: table(cache.TableWatchlist, s.settings.WatchlistWindow),
		Providers: table(cache.TableProviders, s.settings.ProvidersWindow),
		Details:   table(cache.TableDetails, s.settings.DetailsWindow),
	}, nil
}

// ClearCache removes every cached entry; the next request for anything
// goes to TMDB.
func (s *Service) ClearCache(ctx context.Context) (map[string]int64, error) {
	deleted, err := s.store.Clear(ctx)
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Info("cache cleared", "deleted", deleted)
	}
	return deleted, nil
}
