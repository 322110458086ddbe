package v1

import "net/http"

// getDebug reports configuration presence and probes TMDB directly,
// bypassing the cache: the genre list checks the API key, the first
// watchlist page checks the account ID.
func (s *Server) getDebug(w http.ResponseWriter, r *http.Request) {
	resp := debugResponse{
		Config: s.deps.Debug,
		Tests:  make(map[string]probeResult, 2),
	}

	if err := s.deps.Prober.Ping(r.Context()); err != nil {
		resp.Tests["genres_api"] = probeResult{Message: "API key issue: " + err.Error()}
	} else {
		resp.Tests["genres_api"] = probeResult{Success: true, Message: "API key is valid"}
	}

	page, err := s.deps.Prober.WatchlistPage(r.Context(), s.deps.Service.Settings().AccountID, 1)
	if err != nil {
		resp.Tests["watchlist_api"] = probeResult{Message: "Watchlist error: " + err.Error()}
	} else {
		resp.Tests["watchlist_api"] = probeResult{
			Success:           true,
			Message:           "Watchlist accessible",
			TotalResults:      page.TotalResults,
			TotalPages:        page.TotalPages,
			MoviesOnFirstPage: len(page.Results),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
