package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/tmdb"
	"github.com/vmunix/flickstream/internal/watchlist"
	"github.com/vmunix/flickstream/internal/watchlist/mocks"
)

var errTMDB = errors.New("tmdb: connection refused")

type testEnv struct {
	srv      *Server
	mux      *http.ServeMux
	store    *cache.Store
	db       *sql.DB
	upstream *mocks.MockUpstream
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestEnv wires the API to a real service over an in-memory cache.
func setupTestEnv(t *testing.T, prober Prober) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, cache.Migrate(context.Background(), db))

	store := cache.New(db)
	upstream := mocks.NewMockUpstream(gomock.NewController(t))

	settings := watchlist.DefaultSettings()
	settings.AccountID = cache.DevAccountID
	svc := watchlist.NewService(upstream, store, settings, testLogger())

	srv, err := NewWithDeps(ServerDeps{
		Service: svc,
		Prober:  prober,
		Store:   store,
		Log:     testLogger(),
		Version: "test",
		Debug:   DebugConfig{APIKeySet: true, APIKeyLength: 32, AccountID: cache.DevAccountID, AccountIDSet: true},
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	return &testEnv{srv: srv, mux: mux, store: store, db: db, upstream: upstream}
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	_, err := e.store.SeedDev(context.Background())
	require.NoError(t, err)
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestNewWithDeps_RequiresService(t *testing.T) {
	_, err := NewWithDeps(ServerDeps{})
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestIndex(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/api/v1/view")

	w = env.do(http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetWatchlist_FromCache(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seed(t)
	env.upstream.EXPECT().Genres(gomock.Any()).Return(map[int]string{}, nil)

	w := env.do(http.MethodGet, "/api/v1/watchlist")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[watchlistResponse](t, w)
	assert.Equal(t, cache.DevAccountID, resp.AccountID)
	assert.Equal(t, 5, resp.Total)
	assert.False(t, resp.Stale)
	require.Len(t, resp.Movies, 5)
	assert.Equal(t, "The Shawshank Redemption", resp.Movies[0].Title)
	assert.Equal(t, []string{"Drama", "Crime"}, resp.Movies[0].Genres)
}

func TestGetWatchlist_GenreNamesFromTMDB(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.upstream.EXPECT().Watchlist(gomock.Any(), cache.DevAccountID).
		Return([]tmdb.WatchlistMovie{{ID: 603, Title: "The Matrix", GenreIDs: []int{28, 12345}}}, nil)
	env.upstream.EXPECT().Genres(gomock.Any()).Return(map[int]string{28: "Action"}, nil)

	w := env.do(http.MethodGet, "/api/v1/watchlist")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[watchlistResponse](t, w)
	require.Len(t, resp.Movies, 1)
	assert.Equal(t, []string{"Action", "Unknown"}, resp.Movies[0].Genres)
}

func TestGetWatchlist_DataUnavailable(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.upstream.EXPECT().Watchlist(gomock.Any(), cache.DevAccountID).Return(nil, errTMDB)

	w := env.do(http.MethodGet, "/api/v1/watchlist")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DATA_UNAVAILABLE", decode[errorResponse](t, w).Code)
}

func TestGetWatchlist_StoreError(t *testing.T) {
	env := setupTestEnv(t, nil)
	require.NoError(t, env.db.Close())

	w := env.do(http.MethodGet, "/api/v1/watchlist")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "STORE_ERROR", decode[errorResponse](t, w).Code)
}

func TestGetView(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seed(t)
	env.upstream.EXPECT().Genres(gomock.Any()).Return(map[int]string{}, nil)

	w := env.do(http.MethodGet, "/api/v1/view?provider=Netflix&sort=runtime&order=desc")
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[watchlist.View](t, w)
	assert.Equal(t, "US", view.Region)
	assert.Equal(t, 5, view.Total)
	require.Len(t, view.Items, 2)
	assert.Equal(t, int64(424), view.Items[0].ID) // 195 min
	assert.Equal(t, int64(278), view.Items[1].ID) // 142 min
}

func TestGetView_QueryAndRegion(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seed(t)
	env.upstream.EXPECT().Genres(gomock.Any()).Return(map[int]string{}, nil)

	w := env.do(http.MethodGet, "/api/v1/view?q=godfater&region=gb")
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[watchlist.View](t, w)
	assert.Equal(t, "GB", view.Region)
	require.Len(t, view.Items, 2)
	for _, item := range view.Items {
		assert.Empty(t, item.StreamingOn)
	}
}

func TestGetView_BadParameters(t *testing.T) {
	tests := []struct {
		query string
		code  string
	}{
		{"region=USA", "INVALID_REGION"},
		{"region=1", "INVALID_REGION"},
		{"max_runtime=long", "INVALID_PARAMETER"},
		{"max_runtime=-5", "INVALID_PARAMETER"},
		{"sort=popularity", "INVALID_PARAMETER"},
		{"order=sideways", "INVALID_PARAMETER"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			env := setupTestEnv(t, nil)
			w := env.do(http.MethodGet, "/api/v1/view?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode[errorResponse](t, w).Code)
		})
	}
}

func TestGetProviders(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seed(t)
	env.upstream.EXPECT().WatchProviders(gomock.Any(), int64(999)).Return(nil, errTMDB)

	w := env.do(http.MethodGet, "/api/v1/providers?ids=238,%20999,238")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[providersResponse](t, w)
	require.Contains(t, resp.Providers, int64(238))
	assert.Equal(t, []string{"Paramount Plus"}, resp.Providers[238].Results.FlatrateNames("US"))
	assert.Equal(t, []int64{999}, resp.Unavailable)
}

func TestGetProviders_InvalidIDs(t *testing.T) {
	for _, q := range []string{"", "?ids=", "?ids=abc", "?ids=1,-2", "?ids=,,"} {
		t.Run(q, func(t *testing.T) {
			env := setupTestEnv(t, nil)
			w := env.do(http.MethodGet, "/api/v1/providers"+q)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_IDS", decode[errorResponse](t, w).Code)
		})
	}
}

func TestGetProviders_TooManyIDs(t *testing.T) {
	env := setupTestEnv(t, nil)
	ids := make([]string, maxIDs+1)
	for i := range ids {
		ids[i] = "1"
	}
	w := env.do(http.MethodGet, "/api/v1/providers?ids="+strings.Join(ids, ","))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMovieDetails(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seed(t)
	env.upstream.EXPECT().MovieDetails(gomock.Any(), int64(550)).
		Return(&tmdb.MovieDetails{ID: 550}, nil)

	w := env.do(http.MethodGet, "/api/v1/movie-details?ids=424,550")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[detailsResponse](t, w)
	require.NotNil(t, resp.Details[424].Runtime)
	assert.Equal(t, 195, *resp.Details[424].Runtime)
	require.Contains(t, resp.Details, int64(550))
	assert.Nil(t, resp.Details[550].Runtime)
	assert.Empty(t, resp.Unavailable)
}

func TestListGenres(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.upstream.EXPECT().Genres(gomock.Any()).Return(map[int]string{18: "Drama", 28: "Action"}, nil)

	w := env.do(http.MethodGet, "/api/v1/genres")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []genreResponse{{28, "Action"}, {18, "Drama"}}, decode[[]genreResponse](t, w))
}

func TestListGenres_TMDBDown(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.upstream.EXPECT().Genres(gomock.Any()).Return(nil, errTMDB)

	w := env.do(http.MethodGet, "/api/v1/genres")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestListStreamingServices(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seed(t)

	w := env.do(http.MethodGet, "/api/v1/streaming-services")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[watchlist.Services](t, w)
	assert.Equal(t, watchlist.SourceAutoDiscovered, resp.Source)
	assert.Contains(t, resp.Services, "Netflix")
}

func TestCacheStatsAndClear(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.seed(t)

	w := env.do(http.MethodGet, "/api/v1/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[watchlist.CacheStats](t, w)
	assert.Equal(t, 5, stats.Providers.Entries)
	assert.Equal(t, 24.0, stats.Providers.WindowHours)

	w = env.do(http.MethodGet, "/api/v1/cache/clear")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = env.do(http.MethodPost, "/api/v1/cache/clear")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[clearResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Deleted[cache.TableWatchlist])

	after, err := env.srv.deps.Service.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, after.Providers.Entries)
}

func TestGetStatus(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[statusResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "US", resp.Region)

	require.NoError(t, env.db.Close())
	w = env.do(http.MethodGet, "/api/v1/status")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decode[statusResponse](t, w).Status)
}

type fakeProber struct {
	pingErr error
	page    *tmdb.WatchlistPage
	pageErr error
	account string
}

func (f *fakeProber) Ping(context.Context) error { return f.pingErr }

func (f *fakeProber) WatchlistPage(_ context.Context, accountID string, _ int) (*tmdb.WatchlistPage, error) {
	f.account = accountID
	return f.page, f.pageErr
}

func TestGetDebug(t *testing.T) {
	prober := &fakeProber{page: &tmdb.WatchlistPage{
		Page: 1, TotalPages: 3, TotalResults: 47,
		Results: make([]tmdb.WatchlistMovie, 20),
	}}
	env := setupTestEnv(t, prober)

	w := env.do(http.MethodGet, "/api/v1/debug")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[debugResponse](t, w)
	assert.True(t, resp.Config.APIKeySet)
	assert.True(t, resp.Tests["genres_api"].Success)
	wl := resp.Tests["watchlist_api"]
	assert.True(t, wl.Success)
	assert.Equal(t, 47, wl.TotalResults)
	assert.Equal(t, 20, wl.MoviesOnFirstPage)
	assert.Equal(t, cache.DevAccountID, prober.account)
	assert.NotContains(t, w.Body.String(), "api_key\":\"")
}

func TestGetDebug_Failures(t *testing.T) {
	env := setupTestEnv(t, &fakeProber{pingErr: tmdb.ErrUnauthorized, pageErr: tmdb.ErrNotFound})

	w := env.do(http.MethodGet, "/api/v1/debug")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[debugResponse](t, w)
	assert.False(t, resp.Tests["genres_api"].Success)
	assert.Contains(t, resp.Tests["genres_api"].Message, "API key issue")
	assert.False(t, resp.Tests["watchlist_api"].Success)
}

func TestGetDebug_NoProber(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/v1/debug")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStaleResponseFlagged(t *testing.T) {
	env := setupTestEnv(t, nil)
	// Written long ago, so the next read refreshes and TMDB fails.
	old := cache.New(env.db, cache.WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) }))
	_, err := old.PutProviders(context.Background(), 278, tmdb.ProviderRegions{"US": {Flatrate: []tmdb.Provider{{ProviderName: "Netflix"}}}})
	require.NoError(t, err)
	env.upstream.EXPECT().WatchProviders(gomock.Any(), int64(278)).Return(nil, errTMDB)

	w := env.do(http.MethodGet, "/api/v1/providers?ids=278")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[providersResponse](t, w)
	assert.True(t, resp.Providers[278].Stale)
}
