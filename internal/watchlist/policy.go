package watchlist

import (
	"context"
	"fmt"
	"time"

	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/metrics"
)

// Result is a value served by the refresh policy.
type Result[V any] struct {
	Value    V
	CachedAt time.Time
	// Stale is set when a refresh failed and Value is the last stored copy.
	Stale bool
}

// resource binds one cache key to its loader, upstream fetch and writer.
type resource[V any] struct {
	kind   string
	key    any
	window time.Duration
	load   func(ctx context.Context) (cache.Entry[V], bool, error)
	fetch  func(ctx context.Context) (V, error)
	save   func(ctx context.Context, v V) (cache.Entry[V], error)
}

// refresh applies the fetch-or-refresh policy to one resource.
// Store errors are returned as-is; upstream errors are absorbed when a
// stored entry exists and reported as ErrDataUnavailable otherwise.
func refresh[V any](ctx context.Context, s *Service, r resource[V]) (Result[V], error) {
	entry, ok, err := r.load(ctx)
	if err != nil {
		metrics.RecordCacheLookup(r.kind, metrics.OutcomeStoreError)
		return Result[V]{}, err
	}

	if ok && entry.Fresh(r.window, s.now()) {
		metrics.RecordCacheLookup(r.kind, metrics.OutcomeFresh)
		if s.log != nil {
			s.log.Debug("cache hit", "kind", r.kind, "key", r.key, "cached_at", entry.CachedAt)
		}
		return Result[V]{Value: entry.Value, CachedAt: entry.CachedAt}, nil
	}

	if s.log != nil {
		s.log.Debug("cache miss, calling TMDB", "kind", r.kind, "key", r.key, "cached", ok)
	}

	value, fetchErr := r.fetch(ctx)
	if fetchErr == nil {
		saved, err := r.save(ctx, value)
		if err != nil {
			metrics.RecordCacheLookup(r.kind, metrics.OutcomeStoreError)
			return Result[V]{}, err
		}
		metrics.RecordCacheLookup(r.kind, metrics.OutcomeRefreshed)
		return Result[V]{Value: saved.Value, CachedAt: saved.CachedAt}, nil
	}

	if ok {
		metrics.RecordCacheLookup(r.kind, metrics.OutcomeStale)
		if s.log != nil {
			s.log.Warn("refresh failed, serving stale cache",
				"kind", r.kind, "key", r.key, "cached_at", entry.CachedAt, "error", fetchErr)
		}
		return Result[V]{Value: entry.Value, CachedAt: entry.CachedAt, Stale: true}, nil
	}

	metrics.RecordCacheLookup(r.kind, metrics.OutcomeUnavailable)
	if s.log != nil {
		s.log.Warn("refresh failed, nothing cached", "kind", r.kind, "key", r.key, "error", fetchErr)
	}
	return Result[V]{}, fmt.Errorf("%w: %s %v: %w", ErrDataUnavailable, r.kind, r.key, fetchErr)
}
