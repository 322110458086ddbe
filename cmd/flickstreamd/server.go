package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/vmunix/flickstream/internal/api/v1"
	"github.com/vmunix/flickstream/internal/cache"
	"github.com/vmunix/flickstream/internal/config"
	"github.com/vmunix/flickstream/internal/metrics"
	"github.com/vmunix/flickstream/internal/server"
	"github.com/vmunix/flickstream/internal/tmdb"
	"github.com/vmunix/flickstream/internal/watchlist"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, wrapped.status, elapsed)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// loadConfig loads the explicit path, else a discovered file, else the
// environment alone.
func loadConfig(path string) (*config.Config, string, error) {
	path, err := config.Resolve(path)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func debugConfig(cfg *config.Config) v1.DebugConfig {
	return v1.DebugConfig{
		APIKeySet:      cfg.TMDB.APIKey != "",
		APIKeyLength:   len(cfg.TMDB.APIKey),
		AccountID:      cfg.TMDB.AccountID,
		AccountIDSet:   cfg.TMDB.AccountID != "",
		AuthMethod:     cfg.TMDB.AuthMethod,
		Region:         cfg.Viewer.Region,
		DBPath:         cfg.Database.Path,
		WatchlistHours: cfg.Cache.WatchlistHours,
		ProvidersHours: cfg.Cache.ProvidersHours,
		DetailsHours:   cfg.Cache.DetailsHours,
	}
}

// buildHandler wires the cache, TMDB client and service behind the API.
func buildHandler(cfg *config.Config, store *cache.Store, logger *slog.Logger) (http.Handler, error) {
	client := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDBOptions(logger.With("component", "tmdb"))...)
	svc := watchlist.NewService(client, store, cfg.WatchlistSettings(), logger.With("component", "watchlist"))

	api, err := v1.NewWithDeps(v1.ServerDeps{
		Service: svc,
		Prober:  client,
		Store:   store,
		Log:     logger.With("component", "api"),
		Debug:   debugConfig(cfg),
		Version: version,
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	return logRequests(mux, logger), nil
}

func runServer(configPath string) error {
	cfg, path, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := cache.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	handler, err := buildHandler(cfg, store, logger)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	logger.Info("server starting",
		"addr", addr,
		"config", path,
		"database", cfg.Database.Path,
		"account", cfg.TMDB.AccountID,
		"region", cfg.Viewer.Region,
		"auth_method", cfg.TMDB.AuthMethod,
		"watchlist_cache_hours", cfg.Cache.WatchlistHours,
		"providers_cache_hours", cfg.Cache.ProvidersHours,
		"details_cache_hours", cfg.Cache.DetailsHours,
		"log_level", cfg.Server.LogLevel,
	)

	runner := server.NewRunner(handler, server.DefaultConfig(addr), logger.With("component", "http"))
	if err := runner.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
