package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches any *ConfigError via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// ConfigError collects unresolved ${VAR} references and validation
// failures for one load.
type ConfigError struct {
	Path    string   // Config file path; empty when loaded from the environment
	Missing []string // Unresolved environment variables
	Errors  []string // Validation errors
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var parts []string
	if e.Path != "" {
		parts = append(parts, e.Path+":")
	}
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing environment variables: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Errors) > 0 {
		parts = append(parts, "validation failed:")
		for _, err := range e.Errors {
			parts = append(parts, "  - "+err)
		}
	}
	return strings.Join(parts, "\n")
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalid
}

// HasErrors reports whether anything was collected.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
