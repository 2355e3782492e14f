package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/modelgate/sessions/compaction"
	"github.com/modelgate/sessions/hooks"
	"github.com/modelgate/sessions/types"
)

// fakeCompleter returns a scripted summary for Manager.Compact tests.
type fakeCompleter struct {
	mu       sync.Mutex
	response string
	err      error
	lastReq  compaction.Request
}

func (c *fakeCompleter) Complete(ctx context.Context, req compaction.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastReq = req
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func testResolver() *StaticResolver {
	return &StaticResolver{
		Keys:    map[string]string{"anthropic": "sk-ant-test"},
		Windows: map[string]int{"testprov/small": 1000},
	}
}

func newTestManager(t *testing.T, runtime Runtime, completer compaction.Completer, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(runtime, testResolver(), completer, opts...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, testResolver(), nil); !errors.Is(err, ErrNoRuntime) {
		t.Errorf("nil runtime: got %v, want ErrNoRuntime", err)
	}
	if _, err := NewManager(&fakeRuntime{}, nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil resolver: got %v, want ErrInvalidConfig", err)
	}
	if _, err := NewManager(&fakeRuntime{}, testResolver(), nil, WithCacheSize(0)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero cache size: got %v, want ErrInvalidConfig", err)
	}
	if _, err := NewManager(&fakeRuntime{}, testResolver(), nil, WithLogger(nil)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil logger: got %v, want ErrInvalidConfig", err)
	}
}

func TestChatSessionCachesByPair(t *testing.T) {
	runtime := &fakeRuntime{}
	m := newTestManager(t, runtime, nil, WithSystemPrompt("You are a gateway."))
	ctx := context.Background()

	first, err := m.ChatSession(ctx, "anthropic", "claude-3-5-haiku-20241022")
	if err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	second, err := m.ChatSession(ctx, "anthropic", "claude-3-5-haiku-20241022")
	if err != nil {
		t.Fatalf("ChatSession (cached): %v", err)
	}

	if first != second {
		t.Error("repeat call returned a different handle")
	}
	if got := runtime.buildCount(); got != 1 {
		t.Errorf("build count = %d, want 1", got)
	}
	if got := first.SystemPrompt(); got != "You are a gateway." {
		t.Errorf("system prompt = %q", got)
	}
	if first.ConversationID() == "" {
		t.Error("conversation id is empty")
	}
}

func TestChatSessionMemoryBudget(t *testing.T) {
	runtime := &fakeRuntime{}
	resolver := testResolver()
	resolver.Keys["testprov"] = "k"
	m, err := NewManager(runtime, resolver, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx := context.Background()

	// Listed window of 1000 tokens leaves 750 for history.
	if _, err := m.ChatSession(ctx, "testprov", "small"); err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	if got := runtime.last().MemoryBudget; got != 750 {
		t.Errorf("memory budget = %d, want 750", got)
	}

	// Unknown provider and model fall back to the default window.
	if _, err := m.ChatSession(ctx, "testprov", "unknown"); err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	if got := runtime.last().MemoryBudget; got != DefaultContextWindow*3/4 {
		t.Errorf("fallback memory budget = %d, want %d", got, DefaultContextWindow*3/4)
	}
}

func TestChatSessionValidation(t *testing.T) {
	m := newTestManager(t, &fakeRuntime{}, nil)
	ctx := context.Background()

	if _, err := m.ChatSession(ctx, "", "model"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty provider: got %v, want ErrInvalidConfig", err)
	}
	if _, err := m.ChatSession(ctx, "prov", ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty model: got %v, want ErrInvalidConfig", err)
	}
	if _, err := m.ChatSession(ctx, "unknown", "model"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("missing credential: got %v, want ErrNoAPIKey", err)
	}
}

func TestChatSessionBuildFailureNotCached(t *testing.T) {
	runtime := &fakeRuntime{}
	runtime.setErr(fmt.Errorf("runtime down"))
	m := newTestManager(t, runtime, nil)
	ctx := context.Background()

	_, err := m.ChatSession(ctx, "anthropic", "m")
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("got %v, want ErrBuildFailed", err)
	}
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != "ChatSession" {
		t.Errorf("error = %v, want OpError with Op=ChatSession", err)
	}

	// A later call retries instead of serving the failure.
	runtime.setErr(nil)
	if _, err := m.ChatSession(ctx, "anthropic", "m"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if got := runtime.buildCount(); got != 2 {
		t.Errorf("build count = %d, want 2", got)
	}
}

func TestSessionByIDIndependentOfChatCache(t *testing.T) {
	runtime := &fakeRuntime{}
	m := newTestManager(t, runtime, nil)
	ctx := context.Background()

	agent, err := m.SessionByID(ctx, "agent-7")
	if err != nil {
		t.Fatalf("SessionByID: %v", err)
	}
	again, err := m.SessionByID(ctx, "agent-7")
	if err != nil {
		t.Fatalf("SessionByID (cached): %v", err)
	}
	if agent != again {
		t.Error("repeat call returned a different handle")
	}

	if _, err := m.SessionByID(ctx, ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty id: got %v, want ErrInvalidConfig", err)
	}

	// Agent sessions do not appear in the chat listing.
	if got := len(m.CachedSessions()); got != 0 {
		t.Errorf("chat listing has %d entries, want 0", got)
	}
}

func TestReset(t *testing.T) {
	m := newTestManager(t, &fakeRuntime{}, nil, WithSystemPrompt("keep me"))
	ctx := context.Background()

	if got := m.Reset("anthropic", "m"); got.Reset {
		t.Error("reset of absent session reported Reset: true")
	}

	handle, err := m.ChatSession(ctx, "anthropic", "m")
	if err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	handle.Memory().Append(types.NewTextMessage(types.RoleUser, "hello"))
	oldID := handle.ConversationID()

	result := m.Reset("anthropic", "m")
	if !result.Reset {
		t.Fatal("Reset reported false for a cached session")
	}
	if result.NewConversationID == "" || result.NewConversationID == oldID {
		t.Errorf("new conversation id = %q, old = %q", result.NewConversationID, oldID)
	}
	if got := handle.ConversationID(); got != result.NewConversationID {
		t.Errorf("handle conversation id = %q, want %q", got, result.NewConversationID)
	}
	if got := handle.Memory().Len(); got != 0 {
		t.Errorf("memory has %d messages after reset, want 0", got)
	}
	if got := handle.SystemPrompt(); got != "keep me" {
		t.Errorf("system prompt = %q after reset", got)
	}
}

func TestEvictFiresHookAndCloses(t *testing.T) {
	var gotKey, gotConv string
	m := newTestManager(t, &fakeRuntime{}, nil,
		WithEvictionHook(hooks.EvictionFunc(func(key, conversationID string) {
			gotKey, gotConv = key, conversationID
		})))
	ctx := context.Background()

	handle, err := m.ChatSession(ctx, "anthropic", "m")
	if err != nil {
		t.Fatalf("ChatSession: %v", err)
	}

	if !m.Evict("anthropic", "m") {
		t.Fatal("Evict returned false for a cached session")
	}
	if m.Evict("anthropic", "m") {
		t.Error("second Evict returned true")
	}
	if !handle.(*fakeHandle).isClosed() {
		t.Error("evicted handle was not closed")
	}
	if gotKey != chatKey("anthropic", "m") || gotConv != handle.ConversationID() {
		t.Errorf("hook saw (%q, %q)", gotKey, gotConv)
	}
}

func TestClearAll(t *testing.T) {
	m := newTestManager(t, &fakeRuntime{}, nil)
	ctx := context.Background()

	handles := make([]Handle, 0, 3)
	for _, model := range []string{"a", "b", "c"} {
		h, err := m.ChatSession(ctx, "anthropic", model)
		if err != nil {
			t.Fatalf("ChatSession(%s): %v", model, err)
		}
		handles = append(handles, h)
	}

	if got := m.ClearAll(); got != 3 {
		t.Errorf("ClearAll = %d, want 3", got)
	}
	for i, h := range handles {
		if !h.(*fakeHandle).isClosed() {
			t.Errorf("handle %d not closed after ClearAll", i)
		}
	}
	if got := m.ClearAll(); got != 0 {
		t.Errorf("second ClearAll = %d, want 0", got)
	}
}

func TestCompact(t *testing.T) {
	completer := &fakeCompleter{response: "They debugged a cache together."}
	var before, after int
	m := newTestManager(t, &fakeRuntime{}, completer,
		WithCompactionHook(countingCompactionHook{&before, &after}))
	ctx := context.Background()

	// Absent session is a no-op result, not an error.
	if result := m.Compact(ctx, "anthropic", "m", 0); result.Compacted {
		t.Error("compacting an absent session reported Compacted: true")
	}
	if before != 0 || after != 0 {
		t.Errorf("hooks fired without a cached session: before=%d after=%d", before, after)
	}

	handle, err := m.ChatSession(ctx, "anthropic", "m")
	if err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	for i := 0; i < 20; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		handle.Memory().Append(types.NewTextMessage(role, fmt.Sprintf("message %d", i)))
	}

	result := m.Compact(ctx, "anthropic", "m", 0)
	if !result.Compacted {
		t.Fatal("Compact reported false for an eligible history")
	}
	if result.RemovedMessages != 14 {
		t.Errorf("removed %d messages, want 14", result.RemovedMessages)
	}
	if got := handle.Memory().Len(); got != 8 {
		t.Errorf("history length = %d after compaction, want 8", got)
	}
	if completer.lastReq.APIKey != "sk-ant-test" {
		t.Errorf("summarizer api key = %q", completer.lastReq.APIKey)
	}
	if before != 1 || after != 1 {
		t.Errorf("hook counts before=%d after=%d, want 1 and 1", before, after)
	}

	recorded, ok := m.LastCompaction("anthropic", "m")
	if !ok || recorded.RemovedMessages != 14 {
		t.Errorf("LastCompaction = (%+v, %v)", recorded, ok)
	}

	// Reset drops the record.
	m.Reset("anthropic", "m")
	if _, ok := m.LastCompaction("anthropic", "m"); ok {
		t.Error("LastCompaction survived a reset")
	}
}

func TestCompactAbsorbsFailures(t *testing.T) {
	completer := &fakeCompleter{err: fmt.Errorf("provider unavailable")}
	m := newTestManager(t, &fakeRuntime{}, completer)
	ctx := context.Background()

	handle, err := m.ChatSession(ctx, "anthropic", "m")
	if err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	for i := 0; i < 20; i++ {
		handle.Memory().Append(types.NewTextMessage(types.RoleUser, fmt.Sprintf("message %d", i)))
	}

	if result := m.Compact(ctx, "anthropic", "m", 0); result.Compacted {
		t.Error("failed compaction reported Compacted: true")
	}
	if got := handle.Memory().Len(); got != 20 {
		t.Errorf("history length = %d after failed compaction, want 20", got)
	}
}

func TestCompactWithoutCompleterOrCredential(t *testing.T) {
	m := newTestManager(t, &fakeRuntime{}, nil)
	ctx := context.Background()

	if _, err := m.ChatSession(ctx, "anthropic", "m"); err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	if result := m.Compact(ctx, "anthropic", "m", 0); result.Compacted {
		t.Error("Compact without a completer reported Compacted: true")
	}

	// A configured completer still needs a credential for the provider.
	resolver := &StaticResolver{Keys: map[string]string{"other": "k"}}
	m2, err := NewManager(&fakeRuntime{}, resolver, &fakeCompleter{response: "s"})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := m2.ChatSession(ctx, "other", "m"); err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	resolver.Keys = map[string]string{}
	if result := m2.Compact(ctx, "other", "m", 0); result.Compacted {
		t.Error("Compact without a credential reported Compacted: true")
	}
}

func TestSessionInfoAndBreakdown(t *testing.T) {
	m := newTestManager(t, &fakeRuntime{}, nil,
		WithSystemPrompt("Preamble\n## Tools\nTool info"))
	ctx := context.Background()

	if _, ok := m.SessionInfo("anthropic", "m", 0); ok {
		t.Error("SessionInfo for an absent session reported ok")
	}
	if _, ok := m.ContextBreakdown("anthropic", "m", 0); ok {
		t.Error("ContextBreakdown for an absent session reported ok")
	}

	handle, err := m.ChatSession(ctx, "anthropic", "m")
	if err != nil {
		t.Fatalf("ChatSession: %v", err)
	}
	handle.Memory().Append(types.NewTextMessage(types.RoleUser, "hello there"))

	info, ok := m.SessionInfo("anthropic", "m", 2000)
	if !ok {
		t.Fatal("SessionInfo reported absent for a cached session")
	}
	if info.MaxContextTokens != 2000 {
		t.Errorf("max context tokens = %d, want override 2000", info.MaxContextTokens)
	}
	if info.MessageCount != 1 {
		t.Errorf("message count = %d, want 1", info.MessageCount)
	}
	if info.SessionID != handle.ConversationID() {
		t.Errorf("session id = %q", info.SessionID)
	}

	breakdown, ok := m.ContextBreakdown("anthropic", "m", 0)
	if !ok {
		t.Fatal("ContextBreakdown reported absent for a cached session")
	}
	if len(breakdown.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(breakdown.Sections))
	}
	if breakdown.Sections[0].Name != "Base Prompt" || breakdown.Sections[1].Name != "Tools" {
		t.Errorf("section names = %q, %q", breakdown.Sections[0].Name, breakdown.Sections[1].Name)
	}
	if breakdown.MessageCount != 1 {
		t.Errorf("breakdown message count = %d, want 1", breakdown.MessageCount)
	}
}

func TestCachedSessions(t *testing.T) {
	m := newTestManager(t, &fakeRuntime{}, nil)
	ctx := context.Background()

	for _, model := range []string{"a", "b"} {
		h, err := m.ChatSession(ctx, "anthropic", model)
		if err != nil {
			t.Fatalf("ChatSession(%s): %v", model, err)
		}
		h.Memory().Append(types.NewTextMessage(types.RoleUser, "hi"))
	}

	listed := m.CachedSessions()
	if len(listed) != 2 {
		t.Fatalf("listed %d sessions, want 2", len(listed))
	}
	if listed[0].Key != chatKey("anthropic", "a") || listed[1].Key != chatKey("anthropic", "b") {
		t.Errorf("keys = %q, %q", listed[0].Key, listed[1].Key)
	}
	for _, entry := range listed {
		if entry.Provider != "anthropic" || entry.ConversationID == "" {
			t.Errorf("entry = %+v", entry)
		}
		if entry.Stats.MessageCount != 1 {
			t.Errorf("stats message count = %d, want 1", entry.Stats.MessageCount)
		}
	}
}

func TestCacheEvictionClosesOldest(t *testing.T) {
	var evicted []string
	m := newTestManager(t, &fakeRuntime{}, nil,
		WithCacheSize(2),
		WithEvictionHook(hooks.EvictionFunc(func(key, conversationID string) {
			evicted = append(evicted, key)
		})))
	ctx := context.Background()

	for _, model := range []string{"a", "b", "c"} {
		if _, err := m.ChatSession(ctx, "anthropic", model); err != nil {
			t.Fatalf("ChatSession(%s): %v", model, err)
		}
	}

	if len(evicted) != 1 || evicted[0] != chatKey("anthropic", "a") {
		t.Errorf("evicted keys = %v, want just the oldest", evicted)
	}
	if got := len(m.CachedSessions()); got != 2 {
		t.Errorf("cache holds %d sessions, want 2", got)
	}
}

// countingCompactionHook increments its counters around compaction passes.
type countingCompactionHook struct {
	before *int
	after  *int
}

func (h countingCompactionHook) BeforeCompaction(provider, model string) { *h.before++ }

func (h countingCompactionHook) AfterCompaction(provider, model string, result *compaction.Result) {
	*h.after++
}
