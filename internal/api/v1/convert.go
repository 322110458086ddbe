package v1

import (
	"github.com/vmunix/flickstream/internal/tmdb"
	"github.com/vmunix/flickstream/internal/watchlist"
)

func movieToResponse(m tmdb.WatchlistMovie, genres map[int]string) movieResponse {
	resp := movieResponse{
		ID:           m.ID,
		Title:        m.Title,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		ReleaseDate:  m.ReleaseDate,
		VoteAverage:  m.VoteAverage,
		GenreIDs:     m.GenreIDs,
		Genres:       watchlist.GenreNames(m, genres),
	}
	if resp.GenreIDs == nil {
		resp.GenreIDs = []int{}
	}
	return resp
}
