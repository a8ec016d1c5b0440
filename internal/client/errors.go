package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for 401 responses; the stored token will not heal itself
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned for 404 responses
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned while the circuit breaker is open
	ErrUnavailable = errors.New("storefront unavailable")
)

// APIError is a non-2xx response of the storefront API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("storefront: HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match ErrUnauthorized and ErrNotFound
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// IsClientError reports a 4xx status
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
