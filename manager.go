package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/modelgate/sessions/compaction"
	"github.com/modelgate/sessions/hooks"
	"github.com/modelgate/sessions/memory"
	"github.com/modelgate/sessions/types"
)

// DefaultCacheSize is the per-cache session capacity when none is configured.
const DefaultCacheSize = 16

// memoryBudgetFraction of the resolved context window is handed to a new
// session's memory store; the remainder is headroom for the system prompt
// and tool definitions.
const (
	memoryBudgetNumerator   = 3
	memoryBudgetDenominator = 4
)

// Manager composes the caches, the creation coalescer, the context-window
// resolver and the compactor into the subsystem's public operations. Sessions
// live in two independent caches: one keyed by agent id, one keyed by
// provider/model pair. The same identity may exist in both, because the
// runtime sessions behind them are independent per purpose.
type Manager struct {
	runtime   Runtime
	resolver  Resolver
	completer compaction.Completer
	compactor *compaction.Compactor
	logger    Logger

	agents *sessionCache
	chats  *sessionCache
	builds buildGroup

	systemPrompt    string
	evictionHooks   []hooks.EvictionHook
	compactionHooks []hooks.CompactionHook

	mu             sync.Mutex
	lastCompaction map[string]*compaction.Result
}

// NewManager creates a Manager. The runtime and resolver are required; the
// completer may be nil, in which case Compact always reports a no-op.
func NewManager(runtime Runtime, resolver Resolver, completer compaction.Completer, opts ...Option) (*Manager, error) {
	if runtime == nil {
		return nil, NewOpError("NewManager", "", ErrNoRuntime)
	}
	if resolver == nil {
		return nil, NewOpError("NewManager", "", fmt.Errorf("%w: resolver is required", ErrInvalidConfig))
	}

	cfg := managerConfig{
		cacheSize: DefaultCacheSize,
		logger:    noopLogger{},
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	m := &Manager{
		runtime:         runtime,
		resolver:        resolver,
		completer:       completer,
		logger:          cfg.logger,
		systemPrompt:    cfg.systemPrompt,
		evictionHooks:   cfg.evictionHooks,
		compactionHooks: cfg.compactionHooks,
		lastCompaction:  make(map[string]*compaction.Result),
	}
	m.compactor = compaction.New(completer, cfg.compaction, cfg.logger)

	onRemove := func(key string, handle Handle) {
		handle.Close()
		m.logger.Info("session removed", "key", key, "conversation_id", handle.ConversationID())
		for _, hook := range m.evictionHooks {
			hook.OnEviction(key, handle.ConversationID())
		}
		m.mu.Lock()
		delete(m.lastCompaction, key)
		m.mu.Unlock()
	}

	var err error
	if m.agents, err = newSessionCache(cfg.cacheSize, onRemove); err != nil {
		return nil, NewOpError("NewManager", "", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}
	if m.chats, err = newSessionCache(cfg.cacheSize, onRemove); err != nil {
		return nil, NewOpError("NewManager", "", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	return m, nil
}

// SessionByID returns the cached session for an agent id, constructing it on
// first use. Concurrent calls for the same id share one construction.
func (m *Manager) SessionByID(ctx context.Context, id string) (Handle, error) {
	if id == "" {
		return nil, NewOpError("SessionByID", "", fmt.Errorf("%w: id is required", ErrInvalidConfig))
	}
	if handle, ok := m.agents.Get(id); ok {
		return handle, nil
	}

	return m.builds.Do(EncodeKey("agent", id), func() (Handle, error) {
		if handle, ok := m.agents.Get(id); ok {
			return handle, nil
		}

		handle, err := m.runtime.NewSession(ctx, SessionParams{
			AgentID:        id,
			SystemPrompt:   m.systemPrompt,
			ConversationID: uuid.NewString(),
		})
		if err != nil {
			return nil, NewOpError("SessionByID", id, fmt.Errorf("%w: %v", ErrBuildFailed, err))
		}

		m.agents.Put(id, handle)
		m.logger.Info("agent session created",
			"agent_id", id, "conversation_id", handle.ConversationID())
		return handle, nil
	})
}

// ChatSession returns the cached chat session for a provider/model pair,
// constructing it on first use. The session's memory budget is 75% of the
// resolved context window.
func (m *Manager) ChatSession(ctx context.Context, provider, model string) (Handle, error) {
	if provider == "" || model == "" {
		return nil, NewOpError("ChatSession", "",
			fmt.Errorf("%w: provider and model are required", ErrInvalidConfig))
	}

	key := chatKey(provider, model)
	if handle, ok := m.chats.Get(key); ok {
		return handle, nil
	}

	return m.builds.Do(key, func() (Handle, error) {
		if handle, ok := m.chats.Get(key); ok {
			return handle, nil
		}

		apiKey, err := m.resolver.APIKey(ctx, provider)
		if err != nil {
			return nil, NewOpError("ChatSession", key, err)
		}

		window := m.resolver.ContextWindow(provider, model, 0)
		budget := window * memoryBudgetNumerator / memoryBudgetDenominator

		handle, err := m.runtime.NewSession(ctx, SessionParams{
			Provider:       provider,
			Model:          model,
			APIKey:         apiKey,
			SystemPrompt:   m.systemPrompt,
			MemoryBudget:   budget,
			ConversationID: uuid.NewString(),
		})
		if err != nil {
			return nil, NewOpError("ChatSession", key, fmt.Errorf("%w: %v", ErrBuildFailed, err))
		}

		m.chats.Put(key, handle)
		m.logger.Info("chat session created",
			"provider", provider, "model", model,
			"conversation_id", handle.ConversationID(), "memory_budget", budget)
		return handle, nil
	})
}

// ResetResult reports the outcome of a Reset call.
type ResetResult struct {
	Reset             bool   `json:"reset"`
	NewConversationID string `json:"new_conversation_id,omitempty"`
}

// Reset discards the cached chat session's current conversation and starts a
// fresh one seeded with the same system prompt. When nothing is cached for
// the pair it reports Reset: false without side effects.
func (m *Manager) Reset(provider, model string) ResetResult {
	key := chatKey(provider, model)
	handle, ok := m.chats.Get(key)
	if !ok {
		return ResetResult{}
	}

	prompt := handle.SystemPrompt()
	handle.Memory().Clear()
	newID := uuid.NewString()
	handle.LoadConversation(newID)
	handle.UpdateSystemPrompt(prompt)

	m.mu.Lock()
	delete(m.lastCompaction, key)
	m.mu.Unlock()

	m.logger.Info("session reset", "key", key, "conversation_id", newID)
	return ResetResult{Reset: true, NewConversationID: newID}
}

// Evict removes the cached chat session for a provider/model pair, closing
// it if present.
func (m *Manager) Evict(provider, model string) bool {
	return m.chats.Delete(chatKey(provider, model))
}

// ClearAll evicts every cached chat session and returns how many were
// removed.
func (m *Manager) ClearAll() int {
	n := m.chats.Clear()
	m.logger.Info("cleared chat sessions", "count", n)
	return n
}

// Compact summarizes the cached chat session's older history, keeping the
// most recent messages verbatim. "Nothing cached", "no summarizer", "no
// credential" and summarizer failures are all reported as a non-compacted
// Result, never as an error; the session is left untouched in every such
// case. keepRecent <= 0 selects the configured default.
func (m *Manager) Compact(ctx context.Context, provider, model string, keepRecent int) *compaction.Result {
	key := chatKey(provider, model)
	handle, ok := m.chats.Get(key)
	if !ok {
		m.logger.Debug("compact: no session cached", "key", key)
		return &compaction.Result{}
	}
	if m.completer == nil {
		m.logger.Warn("compact: no summarization provider configured", "key", key)
		return &compaction.Result{}
	}

	apiKey, err := m.resolver.APIKey(ctx, provider)
	if err != nil {
		m.logger.Warn("compact: no credential for provider", "provider", provider, "error", err)
		return &compaction.Result{}
	}

	for _, hook := range m.compactionHooks {
		hook.BeforeCompaction(provider, model)
	}

	result, err := m.compactor.Compact(ctx, handle.Memory(), compaction.Options{
		KeepRecent: keepRecent,
		APIKey:     apiKey,
	})
	if err != nil {
		m.logger.Warn("compaction failed, session left untouched", "key", key, "error", err)
		result = &compaction.Result{}
	}

	for _, hook := range m.compactionHooks {
		hook.AfterCompaction(provider, model, result)
	}

	if result.Compacted {
		m.mu.Lock()
		m.lastCompaction[key] = result
		m.mu.Unlock()
	}
	return result
}

// SessionInfo reports context usage for the cached chat session of a
// provider/model pair. The second return value is false when nothing is
// cached. A positive windowOverride replaces the resolved context window.
func (m *Manager) SessionInfo(provider, model string, windowOverride int) (SessionInfo, bool) {
	handle, ok := m.chats.Peek(chatKey(provider, model))
	if !ok {
		return SessionInfo{}, false
	}
	window := m.resolver.ContextWindow(provider, model, windowOverride)
	return buildSessionInfo(handle, window), true
}

// ContextBreakdown splits the cached chat session's system prompt into named
// sections with token estimates. Returns (nil, false) when nothing is cached;
// inspection never creates a session.
func (m *Manager) ContextBreakdown(provider, model string, windowOverride int) (*ContextBreakdown, bool) {
	handle, ok := m.chats.Peek(chatKey(provider, model))
	if !ok {
		return nil, false
	}
	window := m.resolver.ContextWindow(provider, model, windowOverride)
	return buildContextBreakdown(handle, window), true
}

// Messages returns a copy of the cached chat session's history without
// affecting eviction order. The second return value is false when nothing is
// cached.
func (m *Manager) Messages(provider, model string) ([]types.Message, bool) {
	handle, ok := m.chats.Peek(chatKey(provider, model))
	if !ok {
		return nil, false
	}
	return handle.Memory().Messages(), true
}

// LastCompaction returns the most recent successful compaction result for a
// provider/model pair, if any. The record is dropped when the session is
// reset or removed.
func (m *Manager) LastCompaction(provider, model string) (*compaction.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.lastCompaction[chatKey(provider, model)]
	return result, ok
}

// CachedSession is a read-only listing entry for one cached chat session.
type CachedSession struct {
	Key            string       `json:"key"`
	Provider       string       `json:"provider"`
	Model          string       `json:"model"`
	ConversationID string       `json:"conversation_id"`
	Stats          memory.Stats `json:"stats"`
}

// CachedSessions lists the cached chat sessions from oldest to newest
// without affecting eviction order.
func (m *Manager) CachedSessions() []CachedSession {
	keys := m.chats.Keys()
	out := make([]CachedSession, 0, len(keys))
	for _, key := range keys {
		handle, ok := m.chats.Peek(key)
		if !ok {
			continue
		}
		out = append(out, CachedSession{
			Key:            key,
			Provider:       handle.Provider(),
			Model:          handle.Model(),
			ConversationID: handle.ConversationID(),
			Stats:          handle.Memory().Stats(),
		})
	}
	return out
}
