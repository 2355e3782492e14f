// Package settings defines the key/value conventions shared by the
// Postgres-backed resolver implementations in the pgxv5 and databasesql
// subpackages.
//
// Settings are stored one row per key. Provider credentials live under
// "api_key/<provider>"; context-window overrides live under
// "context_window/<provider>/<model>".
package settings

// TableName is the settings table used by both store implementations.
const TableName = "gateway_settings"

// Schema creates the settings table. Both stores run it from Migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS gateway_settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// APIKeyName returns the settings key holding a provider's credential.
func APIKeyName(provider string) string {
	return "api_key/" + provider
}

// ContextWindowName returns the settings key holding a context-window
// override for a provider/model pair.
func ContextWindowName(provider, model string) string {
	return "context_window/" + provider + "/" + model
}
