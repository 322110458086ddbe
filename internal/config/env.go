package config

import (
	"fmt"
	"strconv"
	"strings"
)

// lookupFunc matches os.LookupEnv.
type lookupFunc func(string) (string, bool)

// applyEnv overlays the flat environment variables the container image
// documents. Set variables win over the file.
func (c *Config) applyEnv(lookup lookupFunc) []string {
	var errs []string

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	hours := func(name string, dst *float64) {
		v, ok := lookup(name)
		if !ok || v == "" {
			return
		}
		h, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: not a number: %q", name, v))
			return
		}
		*dst = h
	}

	str("TMDB_API_KEY", &c.TMDB.APIKey)
	str("TMDB_ACCOUNT_ID", &c.TMDB.AccountID)
	str("TMDB_AUTH_METHOD", &c.TMDB.AuthMethod)
	str("TMDB_BASE_URL", &c.TMDB.BaseURL)
	hours("WATCHLIST_CACHE_HOURS", &c.Cache.WatchlistHours)
	hours("PROVIDERS_CACHE_HOURS", &c.Cache.ProvidersHours)
	hours("DETAILS_CACHE_HOURS", &c.Cache.DetailsHours)
	str("USER_REGION", &c.Viewer.Region)
	str("DB_PATH", &c.Database.Path)
	str("HOST", &c.Server.Host)
	str("LOG_LEVEL", &c.Server.LogLevel)

	if v, ok := lookup("MY_STREAMING_SERVICES"); ok && v != "" {
		c.Viewer.StreamingServices = splitList(v)
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("PORT: not an integer: %q", v))
		} else {
			c.Server.Port = port
		}
	}

	c.Server.LogLevel = strings.ToLower(c.Server.LogLevel)
	c.TMDB.AuthMethod = strings.ToLower(c.TMDB.AuthMethod)
	return errs
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
