package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelgate/sessions/memory"
)

// fakeHandle is an in-memory Handle used across the package tests.
type fakeHandle struct {
	mu             sync.Mutex
	provider       string
	model          string
	prompt         string
	conversationID string
	mem            *memory.Store
	closed         bool
}

func newFakeHandle(provider, model, prompt string) *fakeHandle {
	return &fakeHandle{
		provider:       provider,
		model:          model,
		prompt:         prompt,
		conversationID: uuid.NewString(),
		mem:            memory.New(0),
	}
}

func (h *fakeHandle) ConversationID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conversationID
}

func (h *fakeHandle) Provider() string { return h.provider }
func (h *fakeHandle) Model() string    { return h.model }

func (h *fakeHandle) SystemPrompt() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prompt
}

func (h *fakeHandle) UpdateSystemPrompt(prompt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prompt = prompt
}

func (h *fakeHandle) LoadConversation(conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conversationID = conversationID
}

func (h *fakeHandle) Memory() *memory.Store { return h.mem }

func (h *fakeHandle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

func (h *fakeHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// fakeRuntime counts constructions and can be scripted to fail or stall.
type fakeRuntime struct {
	mu         sync.Mutex
	builds     int
	err        error
	delay      time.Duration
	lastParams SessionParams
}

func (r *fakeRuntime) NewSession(ctx context.Context, params SessionParams) (Handle, error) {
	r.mu.Lock()
	r.builds++
	r.lastParams = params
	err := r.err
	delay := r.delay
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}

	h := newFakeHandle(params.Provider, params.Model, params.SystemPrompt)
	if params.ConversationID != "" {
		h.conversationID = params.ConversationID
	}
	return h, nil
}

func (r *fakeRuntime) buildCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.builds
}

func (r *fakeRuntime) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeRuntime) last() SessionParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastParams
}
