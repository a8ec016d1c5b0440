// Package domain holds the error taxonomy shared by every storefront
// aggregate. Aggregate packages wrap these sentinels so transport layers can
// classify failures with errors.Is.
package domain

import "errors"

var (
	// ErrValidation marks malformed or inconsistent input (HTTP 400).
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized marks a missing, invalid or expired credential (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an absent cart line, product or user (HTTP 404).
	ErrNotFound = errors.New("not found")
)

// ErrConflict marks a write that collides with an existing row.
var ErrConflict = errors.New("conflict")
