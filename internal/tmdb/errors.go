package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a resource doesn't exist in TMDB.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when TMDB rejects the API key.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable is returned when TMDB cannot be reached, the circuit
	// breaker is open, or the response cannot be decoded.
	ErrUnavailable = errors.New("tmdb unavailable")
)

// APIError is a non-2xx response other than 401/404.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("TMDB API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("TMDB API error: status %d: %s", e.StatusCode, e.Message)
}

// outageError marks a failure that reflects TMDB's health rather than one
// resource: a transport error while the caller was still waiting, or a
// 429/502/503/504. Only these count against the circuit breaker.
type outageError struct {
	err error
}

func (e *outageError) Error() string { return e.err.Error() }
func (e *outageError) Unwrap() error { return e.err }

func isOutage(err error) bool {
	var o *outageError
	return errors.As(err, &o)
}

func isOutageStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
