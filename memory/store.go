// Package memory provides the in-memory conversation store backing a
// session's message history.
package memory

import (
	"sync"
	"time"

	"github.com/modelgate/sessions/types"
)

// Stats is a point-in-time snapshot of a store's contents. It is derived on
// demand and never persisted.
type Stats struct {
	MessageCount    int       `json:"message_count"`
	EstimatedTokens int       `json:"estimated_tokens"`
	LastActivity    time.Time `json:"last_activity"`
}

// Store is an ordered, bounded-by-hint message store for a single
// conversation. The token budget is advisory: it is surfaced to callers so
// they can decide when to compact, the store itself never drops messages.
type Store struct {
	mu           sync.Mutex
	budget       int
	messages     []types.Message
	lastActivity time.Time
}

// New creates a Store with the given advisory token budget.
// A budget of 0 means unbounded.
func New(budgetTokens int) *Store {
	return &Store{budget: budgetTokens}
}

// Budget returns the advisory token budget the store was created with.
func (s *Store) Budget() int {
	return s.budget
}

// Append adds a message to the end of the history.
func (s *Store) Append(msg types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, msg)
	s.lastActivity = msg.CreatedAt
}

// Messages returns a copy of the message history in order.
func (s *Store) Messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Clear removes all messages and returns how many were removed.
// The last-activity timestamp is preserved.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.messages)
	s.messages = nil
	return n
}

// Stats computes message count and estimated tokens from the current
// history. An empty store reports zeros.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := 0
	for i := range s.messages {
		tokens += s.messages[i].EstimatedTokens()
	}

	return Stats{
		MessageCount:    len(s.messages),
		EstimatedTokens: tokens,
		LastActivity:    s.lastActivity,
	}
}
