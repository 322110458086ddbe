// Package config handles TOML configuration loading with environment variable
// substitution and overrides.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	TMDB     TMDBConfig     `toml:"tmdb"`
	Cache    CacheConfig    `toml:"cache"`
	Viewer   ViewerConfig   `toml:"viewer"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TMDBConfig struct {
	APIKey            string        `toml:"api_key"`
	AccountID         string        `toml:"account_id"`
	AuthMethod        string        `toml:"auth_method"` // api_key or bearer
	BaseURL           string        `toml:"base_url"`
	Timeout           time.Duration `toml:"timeout"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Burst             int           `toml:"burst"`
}

// CacheConfig holds the freshness windows in hours.
type CacheConfig struct {
	WatchlistHours float64 `toml:"watchlist_hours"`
	ProvidersHours float64 `toml:"providers_hours"`
	DetailsHours   float64 `toml:"details_hours"`
	Concurrency    int     `toml:"concurrency"`
}

type ViewerConfig struct {
	Region            string   `toml:"region"`
	StreamingServices []string `toml:"streaming_services"`
}

// Defaults.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 5000
	DefaultLogLevel       = "info"
	DefaultDBPath         = "/app/flickstream_cache.db"
	DefaultAuthMethod     = "api_key"
	DefaultBaseURL        = "https://api.themoviedb.org"
	DefaultTimeout        = 10 * time.Second
	DefaultRequestsPerSec = 20
	DefaultBurst          = 10
	DefaultWatchlistHours = 6
	DefaultProvidersHours = 24
	DefaultRegion         = "US"
	DefaultConcurrency    = 10
)

// Load reads the configuration file, applies environment overrides and
// defaults, and validates the result. An empty path loads from the
// environment alone.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation is Load without the final Validate step.
func LoadWithoutValidation(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}

		content, missing := substituteEnvVars(string(data))
		if len(missing) > 0 {
			return nil, &ConfigError{Path: path, Missing: missing}
		}

		if _, err := toml.Decode(content, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if errs := cfg.applyEnv(os.LookupEnv); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.TMDB.AuthMethod == "" {
		c.TMDB.AuthMethod = DefaultAuthMethod
	}
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = DefaultBaseURL
	}
	if c.TMDB.Timeout == 0 {
		c.TMDB.Timeout = DefaultTimeout
	}
	if c.TMDB.RequestsPerSecond == 0 {
		c.TMDB.RequestsPerSecond = DefaultRequestsPerSec
	}
	if c.TMDB.Burst == 0 {
		c.TMDB.Burst = DefaultBurst
	}
	if c.Cache.WatchlistHours == 0 {
		c.Cache.WatchlistHours = DefaultWatchlistHours
	}
	if c.Cache.ProvidersHours == 0 {
		c.Cache.ProvidersHours = DefaultProvidersHours
	}
	// Runtimes share the providers window unless set.
	if c.Cache.DetailsHours == 0 {
		c.Cache.DetailsHours = c.Cache.ProvidersHours
	}
	if c.Cache.Concurrency == 0 {
		c.Cache.Concurrency = DefaultConcurrency
	}
	if c.Viewer.Region == "" {
		c.Viewer.Region = DefaultRegion
	}
	c.Viewer.Region = strings.ToUpper(c.Viewer.Region)
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} with environment variable values.
// ${VAR:-default} uses default when VAR is unset or empty; ${VAR:?message}
// reports message when it is. Unresolved references are left in place and
// returned in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case "-":
			if value != "" {
				return value
			}
			return arg
		case "?":
			if value != "" {
				return value
			}
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name+": "+arg)
			}
			return match
		}

		if ok {
			return value
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return match
	})
	return result, missing
}
