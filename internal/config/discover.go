package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath names an explicit config file, overriding the search.
const EnvConfigPath = "FLICKSTREAM_CONFIG"

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = errors.New("config not found")

// DefaultPath returns the per-user config path under $XDG_CONFIG_HOME,
// falling back to ~/.config.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "flickstream", "config.toml")
}

// SearchPaths lists the locations Discover checks, in order, after
// FLICKSTREAM_CONFIG.
func SearchPaths() []string {
	return []string{"./config.toml", DefaultPath(), "/etc/flickstream/config.toml"}
}

// Discover returns the first existing config file: FLICKSTREAM_CONFIG if
// set (it must exist), else the first of SearchPaths.
func Discover() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, p, err)
		}
		return p, nil
	}

	paths := SearchPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, strings.Join(paths, ", "))
}

// Resolve picks the file to load. An explicit path wins; otherwise the
// discovered file is used. When nothing is found it returns "", which Load
// treats as environment-only configuration.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := Discover()
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return path, err
}
