// Package pgxv5 provides a pgx/v5 settings store implementing
// sessions.Resolver on top of Postgres.
//
// This is the primary/recommended store, sharing a pgxpool with the rest of
// the gateway.
//
// Usage:
//
//	pool, _ := pgxpool.New(ctx, databaseURL)
//	store := pgxv5.NewStore(pool)
//	manager, _ := sessions.NewManager(runtime, store, completer)
package pgxv5

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelgate/sessions"
	"github.com/modelgate/sessions/settings"
)

// Store resolves provider credentials and context windows from the
// gateway_settings table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a settings store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the settings table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, settings.Schema); err != nil {
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

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a setting.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM gateway_settings WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// get returns a setting's value and whether it exists.
func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM gateway_settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
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
