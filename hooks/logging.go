package hooks

import (
	"log"

	"github.com/modelgate/sessions/compaction"
)

// LoggingHooks logs eviction and compaction events. It implements both
// EvictionHook and CompactionHook.
type LoggingHooks struct {
	logger *log.Logger
}

// NewLoggingHooks creates logging hooks with the provided logger.
func NewLoggingHooks(logger *log.Logger) *LoggingHooks {
	return &LoggingHooks{logger: logger}
}

// DefaultLoggingHooks creates logging hooks with the default logger.
func DefaultLoggingHooks() *LoggingHooks {
	return &LoggingHooks{logger: log.Default()}
}

// OnEviction logs a session teardown.
func (h *LoggingHooks) OnEviction(key, conversationID string) {
	h.logger.Printf("[sessions] evicted session key=%s conversation=%s", key, conversationID)
}

// BeforeCompaction logs the start of a compaction pass.
func (h *LoggingHooks) BeforeCompaction(provider, model string) {
	h.logger.Printf("[sessions] starting compaction for %s/%s", provider, model)
}

// AfterCompaction logs the outcome of a compaction pass.
func (h *LoggingHooks) AfterCompaction(provider, model string, result *compaction.Result) {
	if !result.Compacted {
		h.logger.Printf("[sessions] compaction for %s/%s was a no-op", provider, model)
		return
	}
	h.logger.Printf("[sessions] compaction for %s/%s removed %d messages, ~%d tokens remain",
		provider, model, result.RemovedMessages, result.NewTokenEstimate)
}
