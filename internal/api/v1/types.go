package v1

import (
	"time"

	"github.com/vmunix/flickstream/internal/tmdb"
)

// movieResponse is a watchlist row without providers.
type movieResponse struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	ReleaseDate  string   `json:"release_date"`
	VoteAverage  float64  `json:"vote_average"`
	GenreIDs     []int    `json:"genre_ids"`
	Genres       []string `json:"genres"`
}

// watchlistResponse is the response for GET /watchlist.
type watchlistResponse struct {
	AccountID string          `json:"account_id"`
	Movies    []movieResponse `json:"movies"`
	Total     int             `json:"total"`
	CachedAt  time.Time       `json:"cached_at"`
	Stale     bool            `json:"stale"`
}

type providerEntry struct {
	Results  tmdb.ProviderRegions `json:"results"`
	CachedAt time.Time            `json:"cached_at"`
	Stale    bool                 `json:"stale,omitempty"`
}

// providersResponse is the response for GET /providers. Movies with no
// cached data and a failed lookup are listed in Unavailable.
type providersResponse struct {
	Providers   map[int64]providerEntry `json:"providers"`
	Unavailable []int64                 `json:"unavailable"`
}

type detailsEntry struct {
	Runtime  *int      `json:"runtime"`
	CachedAt time.Time `json:"cached_at"`
	Stale    bool      `json:"stale,omitempty"`
}

// detailsResponse is the response for GET /movie-details.
type detailsResponse struct {
	Details     map[int64]detailsEntry `json:"details"`
	Unavailable []int64                `json:"unavailable"`
}

type genreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type clearResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Deleted map[string]int64 `json:"rows_deleted"`
}

type probeResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	TotalResults      int    `json:"total_results,omitempty"`
	TotalPages        int    `json:"total_pages,omitempty"`
	MoviesOnFirstPage int    `json:"movies_on_first_page,omitempty"`
}

type debugResponse struct {
	Config DebugConfig            `json:"config"`
	Tests  map[string]probeResult `json:"tests"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Region   string `json:"region"`
	Uptime   string `json:"uptime"`
}
