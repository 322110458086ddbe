package cache

import (
	"context"

	"github.com/vmunix/flickstream/internal/tmdb"
)

// DevAccountID is the account the development fixture is stored under.
const DevAccountID = "dev_account"

// SeedResult reports what SeedDev wrote.
type SeedResult struct {
	Movies    int
	Providers int
	Runtimes  int
}

// DevWatchlist is the development fixture: five highly rated classics.
func DevWatchlist() []tmdb.WatchlistMovie {
	return []tmdb.WatchlistMovie{
		{
			ID: 278, Title: "The Shawshank Redemption",
			GenreIDs: []int{18, 80}, Genres: []string{"Drama", "Crime"},
			ReleaseDate: "1994-09-23", VoteAverage: 8.7,
			PosterPath: "/q6y0Go1tsGEsmtFryDOJo3dEmqu.jpg",
		},
		{
			ID: 238, Title: "The Godfather",
			GenreIDs: []int{18, 80}, Genres: []string{"Drama", "Crime"},
			ReleaseDate: "1972-03-14", VoteAverage: 8.7,
			PosterPath: "/3bhkrj58Vtu7enYsRolD1fZdja1.jpg",
		},
		{
			ID: 240, Title: "The Godfather Part II",
			GenreIDs: []int{18, 80}, Genres: []string{"Drama", "Crime"},
			ReleaseDate: "1974-12-20", VoteAverage: 8.6,
			PosterPath: "/hek3koDUyRQk7FIhPXsa6mT2Zc3.jpg",
		},
		{
			ID: 424, Title: "Schindler's List",
			GenreIDs: []int{18, 36, 10752}, Genres: []string{"Drama", "History", "War"},
			ReleaseDate: "1993-12-15", VoteAverage: 8.6,
			PosterPath: "/sF1U4EUQS8YHUYjNl3pMGNIQyr0.jpg",
		},
		{
			ID: 389, Title: "12 Angry Men",
			GenreIDs: []int{18}, Genres: []string{"Drama"},
			ReleaseDate: "1957-04-10", VoteAverage: 8.5,
			PosterPath: "/ow3wq89wM8qd5X7hWKxiRfsFf9C.jpg",
		},
	}
}

func flatrate(names ...string) tmdb.ProviderRegions {
	providers := make([]tmdb.Provider, len(names))
	for i, n := range names {
		providers[i] = tmdb.Provider{ProviderName: n}
	}
	return tmdb.ProviderRegions{"US": {Flatrate: providers}}
}

// SeedDev resets the cache and writes the development fixture under
// DevAccountID, stamped now.
func (s *Store) SeedDev(ctx context.Context) (SeedResult, error) {
	if _, err := s.Clear(ctx); err != nil {
		return SeedResult{}, err
	}

	movies := DevWatchlist()
	if _, err := s.PutWatchlist(ctx, DevAccountID, movies); err != nil {
		return SeedResult{}, err
	}

	providers := map[int64]tmdb.ProviderRegions{
		278: flatrate("Netflix", "Amazon Prime Video"),
		238: flatrate("Paramount Plus"),
		240: flatrate("Paramount Plus"),
		424: flatrate("Netflix"),
		389: flatrate("Amazon Prime Video"),
	}
	for id, p := range providers {
		if _, err := s.PutProviders(ctx, id, p); err != nil {
			return SeedResult{}, err
		}
	}

	runtimes := map[int64]int{278: 142, 238: 175, 240: 202, 424: 195, 389: 96}
	for id, minutes := range runtimes {
		if _, err := s.PutDetails(ctx, id, &minutes); err != nil {
			return SeedResult{}, err
		}
	}

	return SeedResult{Movies: len(movies), Providers: len(providers), Runtimes: len(runtimes)}, nil
}
