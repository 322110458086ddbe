// Package v1 implements the REST API over the watchlist service.
package v1

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/watchlist"
)

// maxIDs caps the number of movie IDs accepted in one request.
const maxIDs = 1000

//go:embed static/index.html
var indexHTML []byte

var regionPattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// Server is the v1 API server.
type Server struct {
	deps    ServerDeps
	log     *slog.Logger
	started time.Time
}

// NewWithDeps creates a new v1 API server.
func NewWithDeps(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingDependency, err)
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, log: log, started: time.Now()}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.index)

	// Watchlist
	mux.HandleFunc("GET /api/v1/watchlist", s.getWatchlist)
	mux.HandleFunc("GET /api/v1/view", s.getView)
	mux.HandleFunc("GET /api/v1/providers", s.getProviders)
	mux.HandleFunc("GET /api/v1/movie-details", s.getMovieDetails)
	mux.HandleFunc("GET /api/v1/genres", s.listGenres)
	mux.HandleFunc("GET /api/v1/streaming-services", s.listStreamingServices)

	// Cache
	mux.HandleFunc("GET /api/v1/cache/stats", s.getCacheStats)
	mux.HandleFunc("POST /api/v1/cache/clear", s.clearCache)

	// System
	mux.HandleFunc("GET /api/v1/debug", s.requireProber(s.getDebug))
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, watchlist.ErrDataUnavailable):
		writeError(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE",
			"TMDB is unreachable and nothing is cached yet")
	case errors.Is(err, cache.ErrStore):
		s.log.Error("cache store failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
	default:
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// queryIDs parses the comma-separated ids parameter.
func queryIDs(r *http.Request) ([]int64, error) {
	raw := r.URL.Query().Get("ids")
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("no movie IDs provided")
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid movie ID %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("no movie IDs provided")
	}
	if len(ids) > maxIDs {
		return nil, fmt.Errorf("too many movie IDs: %d (max %d)", len(ids), maxIDs)
	}
	return ids, nil
}

// queryRegion returns the region parameter, upper-cased, or the default.
func (s *Server) queryRegion(r *http.Request) (string, error) {
	region := r.URL.Query().Get("region")
	if region == "" {
		return s.deps.Service.Settings().Region, nil
	}
	if !regionPattern.MatchString(region) {
		return "", fmt.Errorf("invalid region %q: want a two-letter country code", region)
	}
	return strings.ToUpper(region), nil
}

// queryList collects a parameter given repeatedly or comma-separated.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) getWatchlist(w http.ResponseWriter, r *http.Request) {
	accountID := s.deps.Service.Settings().AccountID

	res, err := s.deps.Service.Watchlist(r.Context(), accountID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	genres := s.deps.Service.Genres(r.Context())

	resp := watchlistResponse{
		AccountID: accountID,
		Movies:    make([]movieResponse, len(res.Value)),
		Total:     len(res.Value),
		CachedAt:  res.CachedAt,
		Stale:     res.Stale,
	}
	for i, m := range res.Value {
		resp.Movies[i] = movieToResponse(m, genres)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	region, err := s.queryRegion(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REGION", err.Error())
		return
	}

	q := r.URL.Query()
	filter := watchlist.Filter{
		Query:    q.Get("q"),
		Genre:    q.Get("genre"),
		Services: queryList(r, "provider"),
	}
	if v := q.Get("max_runtime"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf("max_runtime: invalid value %q", v))
			return
		}
		filter.MaxRuntime = n
	}
	if filter.Sort, err = watchlist.ParseSortField(q.Get("sort")); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		filter.Descending = true
	default:
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf("order: must be asc or desc, got %q", q.Get("order")))
		return
	}

	view, err := s.deps.Service.View(r.Context(), watchlist.ViewRequest{Region: region, Filter: filter})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getProviders(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_IDS", err.Error())
		return
	}

	results, err := s.deps.Service.ProvidersFor(r.Context(), ids)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := providersResponse{
		Providers:   make(map[int64]providerEntry, len(results)),
		Unavailable: []int64{},
	}
	for _, id := range ids {
		res, ok := results[id]
		if !ok {
			if !slices.Contains(resp.Unavailable, id) {
				resp.Unavailable = append(resp.Unavailable, id)
			}
			continue
		}
		resp.Providers[id] = providerEntry{Results: res.Value, CachedAt: res.CachedAt, Stale: res.Stale}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getMovieDetails(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_IDS", err.Error())
		return
	}

	results, err := s.deps.Service.DetailsFor(r.Context(), ids)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := detailsResponse{
		Details:     make(map[int64]detailsEntry, len(results)),
		Unavailable: []int64{},
	}
	for _, id := range ids {
		res, ok := results[id]
		if !ok {
			if !slices.Contains(resp.Unavailable, id) {
				resp.Unavailable = append(resp.Unavailable, id)
			}
			continue
		}
		resp.Details[id] = detailsEntry{Runtime: res.Value, CachedAt: res.CachedAt, Stale: res.Stale}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listGenres(w http.ResponseWriter, r *http.Request) {
	genres := s.deps.Service.Genres(r.Context())

	resp := make([]genreResponse, 0, len(genres))
	for id, name := range genres {
		resp = append(resp, genreResponse{ID: id, Name: name})
	}
	slices.SortFunc(resp, func(a, b genreResponse) int { return strings.Compare(a.Name, b.Name) })
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listStreamingServices(w http.ResponseWriter, r *http.Request) {
	region, err := s.queryRegion(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REGION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Service.StreamingServices(r.Context(), region))
}

func (s *Server) getCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Service.CacheStats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.deps.Service.ClearCache(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{
		Success: true,
		Message: "Cache cleared successfully",
		Deleted: deleted,
	})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:   "ok",
		Version:  s.deps.Version,
		Database: "ok",
		Region:   s.deps.Service.Settings().Region,
		Uptime:   time.Since(s.started).Truncate(time.Second).String(),
	}
	if s.deps.Store != nil {
		if err := s.deps.Store.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
