package sessions

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNoAPIKey is returned when no credential is configured for a provider
	ErrNoAPIKey = errors.New("no API key configured")

	// ErrNoRuntime is returned when the manager has no session runtime
	ErrNoRuntime = errors.New("no runtime configured")

	// ErrInvalidConfig is returned when manager configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBuildFailed is returned when the runtime fails to construct a session
	ErrBuildFailed = errors.New("session construction failed")
)

// OpError is an error with the operation and cache key that produced it.
type OpError struct {
	Op  string // Operation that failed
	Key string // Cache key if applicable
	Err error  // Underlying error
}

// Error implements the error interface
func (e *OpError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s (key=%s): %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError
func NewOpError(op, key string, err error) *OpError {
	return &OpError{Op: op, Key: key, Err: err}
}
