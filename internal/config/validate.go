package config

import (
	"fmt"
	"regexp"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validAuthMethods = map[string]bool{
	"api_key": true, "bearer": true, "": true,
}

var regionPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required (or set TMDB_API_KEY)")
	}
	if c.TMDB.AccountID == "" {
		errs = append(errs, "tmdb.account_id: required (or set TMDB_ACCOUNT_ID)")
	}
	if !validAuthMethods[c.TMDB.AuthMethod] {
		errs = append(errs, fmt.Sprintf("tmdb.auth_method: must be api_key or bearer; got %q", c.TMDB.AuthMethod))
	}
	if c.TMDB.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.requests_per_second: must not be negative, got %g", c.TMDB.RequestsPerSecond))
	}
	if c.TMDB.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.timeout: must not be negative, got %s", c.TMDB.Timeout))
	}

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	for _, w := range []struct {
		name  string
		hours float64
	}{
		{"cache.watchlist_hours", c.Cache.WatchlistHours},
		{"cache.providers_hours", c.Cache.ProvidersHours},
		{"cache.details_hours", c.Cache.DetailsHours},
	} {
		if w.hours <= 0 {
			errs = append(errs, fmt.Sprintf("%s: must be positive, got %g", w.name, w.hours))
		}
	}
	if c.Cache.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("cache.concurrency: must not be negative, got %d", c.Cache.Concurrency))
	}

	if c.Viewer.Region != "" && !regionPattern.MatchString(c.Viewer.Region) {
		errs = append(errs, fmt.Sprintf("viewer.region: must be a two-letter country code, got %q", c.Viewer.Region))
	}

	return errs
}
