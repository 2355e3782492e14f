package sessions

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Resolver supplies provider credentials and context-window configuration.
// The settings subpackages provide Postgres-backed implementations; the
// resolvers in this file cover static and environment-based setups.
type Resolver interface {
	// APIKey returns the access credential for a provider. It returns an
	// error wrapping ErrNoAPIKey when no credential is configured.
	APIKey(ctx context.Context, provider string) (string, error)

	// ContextWindow returns the maximum token budget for a provider/model
	// pair. A positive override is returned verbatim.
	ContextWindow(provider, model string, override int) int
}

// StaticResolver resolves credentials and context windows from in-memory
// maps. Unlisted models fall back to the built-in window table.
type StaticResolver struct {
	// Keys maps provider name to API key.
	Keys map[string]string

	// Windows maps "provider/model" to a context window, overriding the
	// built-in table.
	Windows map[string]int
}

// APIKey implements Resolver.
func (r *StaticResolver) APIKey(ctx context.Context, provider string) (string, error) {
	if key, ok := r.Keys[provider]; ok && key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: provider %q", ErrNoAPIKey, provider)
}

// ContextWindow implements Resolver.
func (r *StaticResolver) ContextWindow(provider, model string, override int) int {
	if override > 0 {
		return override
	}
	if window, ok := r.Windows[provider+"/"+model]; ok && window > 0 {
		return window
	}
	return ResolveContextWindow(provider, model, 0)
}

// EnvResolver resolves credentials from environment variables named
// <PROVIDER>_API_KEY (provider upper-cased, dashes replaced by underscores),
// e.g. ANTHROPIC_API_KEY. Context windows come from the built-in table.
type EnvResolver struct{}

// APIKey implements Resolver.
func (EnvResolver) APIKey(ctx context.Context, provider string) (string, error) {
	name := strings.ToUpper(strings.ReplaceAll(provider, "-", "_")) + "_API_KEY"
	if key := os.Getenv(name); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: environment variable %s is empty", ErrNoAPIKey, name)
}

// ContextWindow implements Resolver.
func (EnvResolver) ContextWindow(provider, model string, override int) int {
	return ResolveContextWindow(provider, model, override)
}
