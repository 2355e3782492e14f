// Package compaction bounds conversation growth by replacing older history
// with an LLM-generated summary.
//
// A compaction pass takes every message except the most recent keepRecent,
// sends a text rendering of them to a Completer for summarization, and on
// success rewrites the session's memory store as: one synthetic user message
// carrying the summary, one synthetic assistant acknowledgment, then the
// keepRecent original messages verbatim. The acknowledgment keeps the
// rewritten history in a natural conversational shape for subsequent model
// turns.
//
// Compaction is all-or-nothing. Too little history, a missing credential, or
// a failed summarizer call all leave the store untouched; the outcome is
// reported in the returned Result rather than applied partially.
package compaction
