//go:build integration

package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/vmunix/flickstream/internal/tmdb"
)

// TMDBMock is a configurable fake of the TMDB v3 endpoints the client calls.
type TMDBMock struct {
	t *testing.T

	// Configuration
	APIKey    string // Expected api_key (empty = no validation)
	AccountID string
	PageSize  int
	Movies    []tmdb.WatchlistMovie
	Providers map[int64]tmdb.ProviderRegions
	Runtimes  map[int64]*int
	Genres    []tmdb.Genre

	mu       sync.Mutex
	down     bool
	requests []string // request paths, in order
}

// NewTMDBMock creates a new mock TMDB server.
func NewTMDBMock(t *testing.T) *TMDBMock {
	t.Helper()
	return &TMDBMock{
		t:         t,
		APIKey:    "test-api-key",
		AccountID: "8675309",
		PageSize:  20,
		Providers: make(map[int64]tmdb.ProviderRegions),
		Runtimes:  make(map[int64]*int),
	}
}

// WithMovies sets the watchlist.
func (m *TMDBMock) WithMovies(movies ...tmdb.WatchlistMovie) *TMDBMock {
	m.Movies = movies
	return m
}

// WithProviders sets the providers for a movie.
func (m *TMDBMock) WithProviders(id int64, p tmdb.ProviderRegions) *TMDBMock {
	m.Providers[id] = p
	return m
}

// WithRuntime sets the runtime for a movie.
func (m *TMDBMock) WithRuntime(id int64, minutes int) *TMDBMock {
	m.Runtimes[id] = &minutes
	return m
}

// SetDown makes every request fail with 503.
func (m *TMDBMock) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

// Count returns the number of requests whose path starts with prefix.
func (m *TMDBMock) Count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.requests {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

// CountSuffix returns the number of requests whose path ends with suffix.
func (m *TMDBMock) CountSuffix(suffix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.requests {
		if strings.HasSuffix(p, suffix) {
			n++
		}
	}
	return n
}

// Total returns the number of requests received.
func (m *TMDBMock) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Build creates the httptest.Server.
func (m *TMDBMock) Build() *httptest.Server {
	m.t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /3/account/{account}/watchlist/movies", m.handleWatchlist)
	mux.HandleFunc("GET /3/movie/{id}/watch/providers", m.handleProviders)
	mux.HandleFunc("GET /3/movie/{id}", m.handleDetails)
	mux.HandleFunc("GET /3/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		writeTMDB(w, http.StatusOK, map[string]any{"genres": m.Genres})
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, r.URL.Path)
		down := m.down
		m.mu.Unlock()

		if down {
			writeTMDB(w, http.StatusServiceUnavailable, map[string]any{
				"status_code": 43, "status_message": "Service offline.",
			})
			return
		}
		if m.APIKey != "" && r.URL.Query().Get("api_key") != m.APIKey {
			writeTMDB(w, http.StatusUnauthorized, map[string]any{
				"status_code": 7, "status_message": "Invalid API key: You must be granted a valid key.",
			})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	m.t.Cleanup(srv.Close)
	return srv
}

func (m *TMDBMock) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("account") != m.AccountID {
		writeTMDB(w, http.StatusNotFound, map[string]any{"status_code": 34, "status_message": "The resource you requested could not be found."})
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	totalPages := (len(m.Movies) + m.PageSize - 1) / m.PageSize
	start := min((page-1)*m.PageSize, len(m.Movies))
	end := min(start+m.PageSize, len(m.Movies))

	writeTMDB(w, http.StatusOK, tmdb.WatchlistPage{
		Page:         page,
		Results:      m.Movies[start:end],
		TotalPages:   totalPages,
		TotalResults: len(m.Movies),
	})
}

func (m *TMDBMock) handleProviders(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	results, ok := m.Providers[id]
	if !ok {
		results = tmdb.ProviderRegions{}
	}
	writeTMDB(w, http.StatusOK, map[string]any{"id": id, "results": results})
}

func (m *TMDBMock) handleDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	runtime, ok := m.Runtimes[id]
	if !ok {
		writeTMDB(w, http.StatusNotFound, map[string]any{"status_code": 34, "status_message": "The resource you requested could not be found."})
		return
	}
	writeTMDB(w, http.StatusOK, map[string]any{"id": id, "title": "", "runtime": runtime})
}

func writeTMDB(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
