// Package hooks provides observability hooks for session cache and
// compaction events.
package hooks

import "github.com/modelgate/sessions/compaction"

// EvictionHook observes session teardown. It fires whenever a cached session
// is removed, whether by capacity eviction, explicit delete, or clear-all.
type EvictionHook interface {
	OnEviction(key, conversationID string)
}

// CompactionHook observes compaction passes around the summarizer call.
type CompactionHook interface {
	BeforeCompaction(provider, model string)
	AfterCompaction(provider, model string, result *compaction.Result)
}

// EvictionFunc adapts a function to EvictionHook.
type EvictionFunc func(key, conversationID string)

// OnEviction implements EvictionHook.
func (f EvictionFunc) OnEviction(key, conversationID string) {
	f(key, conversationID)
}
