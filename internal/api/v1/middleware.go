package v1

import "net/http"

// requireProber wraps a handler and returns 503 if no TMDB prober is configured.
func (s *Server) requireProber(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Prober == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "TMDB client not configured")
			return
		}
		next(w, r)
	}
}
