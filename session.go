package sessions

import (
	"context"

	"github.com/modelgate/sessions/memory"
)

// SessionParams describes the session a Runtime should construct.
type SessionParams struct {
	// AgentID is set when the session is requested by agent id rather than
	// by provider/model pair.
	AgentID string

	// Provider and Model identify the backing chat-completion model.
	Provider string
	Model    string

	// APIKey is the resolved access credential for Provider.
	APIKey string

	// SystemPrompt seeds the session's system prompt.
	SystemPrompt string

	// MemoryBudget is the advisory token budget for the session's memory
	// store, already reduced from the full context window to leave headroom
	// for the system prompt and tool definitions.
	MemoryBudget int

	// ConversationID is the initial conversation identifier.
	ConversationID string
}

// Handle is a live conversational session produced by a Runtime. It is owned
// by whichever cache entry currently holds it and is closed on eviction or
// explicit teardown.
type Handle interface {
	// ConversationID returns the current conversation identifier.
	ConversationID() string

	// Provider and Model return the session's model identity.
	Provider() string
	Model() string

	// SystemPrompt returns the session's composed system prompt.
	SystemPrompt() string

	// UpdateSystemPrompt replaces the session's system prompt.
	UpdateSystemPrompt(prompt string)

	// LoadConversation switches the session to the given conversation id.
	LoadConversation(conversationID string)

	// Memory returns the session's message store.
	Memory() *memory.Store

	// Close releases provider resources held by the session.
	Close()
}

// Runtime constructs sessions. Implementations perform the provider
// handshake and are expected to bound their own call duration; the manager
// threads the caller's context through so deadlines can be imposed.
type Runtime interface {
	NewSession(ctx context.Context, params SessionParams) (Handle, error)
}
