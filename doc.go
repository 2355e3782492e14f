// Package sessions manages the lifecycle of long-lived conversational agent
// sessions for an AI-chat gateway: lazy creation, bounded in-memory caching,
// deduplication of concurrent construction, context-window accounting, and
// LLM-assisted compaction of conversation history.
//
// # Overview
//
// The package is a library, not a service. It consumes three collaborator
// interfaces (a Runtime that builds sessions, a Resolver that supplies
// credentials and context windows, and a compaction.Completer that performs
// text completion for summarization) and exposes its operations through a
// Manager.
//
//	runtime := anthropicprovider.New()
//	resolver := &sessions.StaticResolver{
//	    Keys: map[string]string{"anthropic": os.Getenv("ANTHROPIC_API_KEY")},
//	}
//	mgr, err := sessions.NewManager(runtime, resolver, runtime,
//	    sessions.WithCacheSize(32),
//	    sessions.WithSystemPrompt("You are a helpful assistant"),
//	)
//
//	handle, err := mgr.ChatSession(ctx, "anthropic", "claude-3-5-haiku-20241022")
//
// # Caching and coalescing
//
// Sessions are cached per key under a fixed capacity with least-recently-used
// eviction; evicted handles are closed and reported to any configured hooks.
// Concurrent requests for the same key share a single in-flight construction,
// so a burst of N identical requests performs exactly one provider handshake.
// A failed construction is forgotten immediately, so the next request retries
// from scratch.
//
// # Context accounting
//
// SessionInfo reports message count, estimated tokens and context fill
// percent for a cached session; ContextBreakdown splits the session's system
// prompt into named sections with per-section token estimates. Token counts
// use a fixed chars/4 approximation throughout, never a tokenizer call.
//
// # Compaction
//
// Compact replaces all but the most recent messages of a session's history
// with an LLM-generated summary, preserving a natural conversational shape:
// a synthetic user message carrying the summary, a synthetic assistant
// acknowledgment, then the recent messages verbatim. Compaction is
// all-or-nothing: any summarizer failure leaves the session untouched and is
// reported as a non-event, never as an error.
package sessions
