// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

// WatchlistMovie is a movie entry from an account watchlist.
type WatchlistMovie struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"` // "2024-03-01"
	PosterPath   string   `json:"poster_path,omitempty"`  // "/abc123.jpg"
	BackdropPath string   `json:"backdrop_path,omitempty"`
	VoteAverage  float64  `json:"vote_average"`
	GenreIDs     []int    `json:"genre_ids"`
	Genres       []string `json:"genres,omitempty"` // only present in locally seeded data
}

// Year extracts the year from ReleaseDate.
func (m *WatchlistMovie) Year() int {
	return yearOf(m.ReleaseDate)
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func (m *WatchlistMovie) PosterURL(size string) string {
	if m.PosterPath == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + m.PosterPath
}

// WatchlistPage is one page of /account/{id}/watchlist/movies.
type WatchlistPage struct {
	Page         int              `json:"page"`
	Results      []WatchlistMovie `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

// Provider is a streaming service offering a title.
type Provider struct {
	ProviderID      int    `json:"provider_id,omitempty"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path,omitempty"`
	DisplayPriority int    `json:"display_priority,omitempty"`
}

// RegionProviders lists providers for one region, grouped by offer type.
type RegionProviders struct {
	Link     string     `json:"link,omitempty"`
	Flatrate []Provider `json:"flatrate,omitempty"` // subscription
	Free     []Provider `json:"free,omitempty"`
	Ads      []Provider `json:"ads,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
}

// ProviderRegions maps a region code ("US", "GB") to its providers.
type ProviderRegions map[string]RegionProviders

// Region returns the providers for region, or nil when the title is not
// offered there.
func (p ProviderRegions) Region(region string) *RegionProviders {
	rp, ok := p[region]
	if !ok {
		return nil
	}
	return &rp
}

// FlatrateNames returns subscription provider names for a region.
func (p ProviderRegions) FlatrateNames(region string) []string {
	rp, ok := p[region]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(rp.Flatrate))
	for _, prov := range rp.Flatrate {
		names = append(names, prov.ProviderName)
	}
	return names
}

type watchProvidersResponse struct {
	ID      int64           `json:"id"`
	Results ProviderRegions `json:"results"`
}

// MovieDetails is the subset of /movie/{id} the viewer uses.
type MovieDetails struct {
	ID          int64   `json:"id"`
	IMDBID      string  `json:"imdb_id,omitempty"` // e.g., "tt0133093"
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Runtime     *int    `json:"runtime"` // minutes, null for unreleased titles
	Genres      []Genre `json:"genres"`
}

// Year extracts the year from ReleaseDate.
func (m *MovieDetails) Year() int {
	return yearOf(m.ReleaseDate)
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

// statusResponse is the error body TMDB returns on failure.
type statusResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
