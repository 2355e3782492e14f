package anthropicprovider

import (
	"context"
	"fmt"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/modelgate/sessions"
	"github.com/modelgate/sessions/internal/anthropic"
	"github.com/modelgate/sessions/memory"
	"github.com/modelgate/sessions/types"
)

// Session is an Anthropic-backed conversation. It satisfies sessions.Handle
// and additionally offers Send for running a user turn against the API.
type Session struct {
	client    *sdk.Client
	model     string
	provider  string
	maxTokens int
	memory    *memory.Store

	mu             sync.Mutex
	systemPrompt   string
	conversationID string
	closed         bool
}

func newSession(client *sdk.Client, params sessions.SessionParams, maxTokens int) *Session {
	provider := params.Provider
	if provider == "" {
		provider = "anthropic"
	}

	return &Session{
		client:         client,
		model:          params.Model,
		provider:       provider,
		maxTokens:      maxTokens,
		memory:         memory.New(params.MemoryBudget),
		systemPrompt:   params.SystemPrompt,
		conversationID: params.ConversationID,
	}
}

// ConversationID implements sessions.Handle.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Provider implements sessions.Handle.
func (s *Session) Provider() string { return s.provider }

// Model implements sessions.Handle.
func (s *Session) Model() string { return s.model }

// SystemPrompt implements sessions.Handle.
func (s *Session) SystemPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.systemPrompt
}

// UpdateSystemPrompt implements sessions.Handle.
func (s *Session) UpdateSystemPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemPrompt = prompt
}

// LoadConversation implements sessions.Handle.
func (s *Session) LoadConversation(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = conversationID
}

// Memory implements sessions.Handle.
func (s *Session) Memory() *memory.Store { return s.memory }

// Close implements sessions.Handle.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Send appends a user turn, runs the conversation against the API and
// appends the assistant's reply. It returns the reply text.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", fmt.Errorf("anthropicprovider: session is closed")
	}
	systemPrompt := s.systemPrompt
	s.mu.Unlock()

	s.memory.Append(types.NewTextMessage(types.RoleUser, text))

	params := sdk.MessageNewParams{
		Model:     sdk.Model(s.model),
		MaxTokens: int64(s.maxTokens),
		Messages:  anthropic.ConvertMessages(s.memory.Messages()),
	}
	if systemPrompt != "" {
		params.System = anthropic.BuildSystemPrompt(systemPrompt)
	}

	message, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropicprovider: message call failed: %w", err)
	}

	reply := anthropic.ExtractText(message)
	s.memory.Append(types.NewTextMessage(types.RoleAssistant, reply))
	return reply, nil
}

var _ sessions.Handle = (*Session)(nil)
