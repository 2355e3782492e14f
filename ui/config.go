package ui

import "time"

// DefaultRefreshInterval is the auto-refresh period for the session list.
const DefaultRefreshInterval = 5 * time.Second

// Config holds UI package configuration.
type Config struct {
	// BasePath is the URL prefix where the UI is mounted.
	// For example, if mounted at "/debug/sessions/", set BasePath to
	// "/debug/sessions". All navigation links will be prefixed with this
	// path. Defaults to empty string (root mount).
	BasePath string

	// ReadOnly disables the reset, compact and evict actions.
	// Useful for monitoring-only deployments.
	ReadOnly bool

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger

	// RefreshInterval for the session list auto-refresh.
	// Defaults to 5 seconds.
	RefreshInterval time.Duration
}

// Logger interface for structured logging.
// Compatible with sessions.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval: DefaultRefreshInterval,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.RefreshInterval == 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	if c.RefreshInterval < time.Second {
		return ErrInvalidConfig
	}
	return nil
}
