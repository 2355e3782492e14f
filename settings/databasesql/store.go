// Package databasesql provides a database/sql settings store implementing
// sessions.Resolver on top of Postgres, for applications already holding a
// *sql.DB.
//
// Usage:
//
//	store, _ := databasesql.Open(databaseURL)
//	manager, _ := sessions.NewManager(runtime, store, completer)
package databasesql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/modelgate/sessions"
	"github.com/modelgate/sessions/settings"
)

// Store resolves provider credentials and context windows from the
// gateway_settings table.
type Store struct {
	db *sql.DB
}

// NewStore creates a settings store backed by an existing database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres with the lib/pq driver and returns a store.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the settings table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, settings.Schema); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

// Set upserts a setting.
func (s *Store) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO gateway_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a setting.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM gateway_settings WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// get returns a setting's value and whether it exists.
func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM gateway_settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// APIKey implements sessions.Resolver.
func (s *Store) APIKey(ctx context.Context, provider string) (string, error) {
	value, ok, err := s.get(ctx, settings.APIKeyName(provider))
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return "", fmt.Errorf("%w: no stored credential for provider %q", sessions.ErrNoAPIKey, provider)
	}
	return value, nil
}

// ContextWindow implements sessions.Resolver. A stored override takes
// precedence over the built-in window table; lookup failures fall back to
// the table rather than surfacing an error.
func (s *Store) ContextWindow(provider, model string, override int) int {
	if override > 0 {
		return override
	}

	value, ok, err := s.get(context.Background(), settings.ContextWindowName(provider, model))
	if err == nil && ok {
		if window, err := strconv.Atoi(value); err == nil && window > 0 {
			return window
		}
	}

	return sessions.ResolveContextWindow(provider, model, 0)
}

// Ensure Store implements sessions.Resolver
var _ sessions.Resolver = (*Store)(nil)
