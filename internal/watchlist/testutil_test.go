package watchlist_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/tmdb"
	"github.com/vmunix/flickstream/internal/watchlist"
	"github.com/vmunix/flickstream/internal/watchlist/mocks"
)

const testAccount = "dev_account"

var errUpstream = errors.New("tmdb: connection refused")

// testClock is shared by the store and the service so cached_at and
// freshness checks agree.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc      *watchlist.Service
	store    *cache.Store
	db       *sql.DB
	upstream *mocks.MockUpstream
	clock    *testClock
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() watchlist.Settings {
	s := watchlist.DefaultSettings()
	s.AccountID = testAccount
	return s
}

// setup wires a service to an in-memory cache and a mock upstream.
func setup(t *testing.T, settings watchlist.Settings) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, cache.Migrate(context.Background(), db))

	clock := &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := cache.New(db, cache.WithClock(clock.Now))
	upstream := mocks.NewMockUpstream(gomock.NewController(t))

	return &fixture{
		svc:      watchlist.NewService(upstream, store, settings, testLogger(), watchlist.WithClock(clock.Now)),
		store:    store,
		db:       db,
		upstream: upstream,
		clock:    clock,
	}
}

func intPtr(n int) *int { return &n }

func streamingOn(region string, names ...string) tmdb.ProviderRegions {
	providers := make([]tmdb.Provider, len(names))
	for i, n := range names {
		providers[i] = tmdb.Provider{ProviderName: n}
	}
	return tmdb.ProviderRegions{region: {Flatrate: providers}}
}
