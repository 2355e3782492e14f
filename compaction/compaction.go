package compaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelgate/sessions/memory"
	"github.com/modelgate/sessions/types"
)

// Logger interface for compaction logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// Request is a single text-completion call to the summarization provider.
type Request struct {
	Model       string
	MaxTokens   int
	Temperature float64

	// APIKey is the access credential for the provider, resolved by the
	// caller for the session being compacted.
	APIKey string

	// System is the summarizer's system prompt; Prompt is the user turn.
	System string
	Prompt string
}

// Completer performs text completion for summarization. Implementations are
// expected to bound their own call duration; the caller's context is threaded
// through so deadlines can be imposed.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Result describes the outcome of one compaction attempt. It is a return
// value, never persisted.
type Result struct {
	// Compacted reports whether the history was rewritten.
	Compacted bool `json:"compacted"`

	// RemovedMessages is the number of original messages replaced by the
	// summary.
	RemovedMessages int `json:"removed_messages"`

	// NewTokenEstimate is the post-rewrite estimated token count from the
	// memory store.
	NewTokenEstimate int `json:"new_token_estimate"`

	// Summary is the summarizer's text, empty when Compacted is false.
	Summary string `json:"summary,omitempty"`
}

// Options adjusts a single compaction pass.
type Options struct {
	// KeepRecent overrides the configured number of preserved messages when
	// positive.
	KeepRecent int

	// Model overrides the configured summarizer model when non-empty.
	Model string

	// APIKey is the credential forwarded to the Completer.
	APIKey string
}

// Compactor rewrites over-long conversation histories in place.
type Compactor struct {
	completer Completer
	config    *Config
	logger    Logger
}

// New creates a Compactor. If config is nil, defaults are used.
func New(completer Completer, config *Config, logger Logger) *Compactor {
	if config == nil {
		config = DefaultConfig()
	} else {
		config.ApplyDefaults()
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Compactor{
		completer: completer,
		config:    config,
		logger:    logger,
	}
}

// summaryFraming introduces the summarizer's text in the synthetic user
// message; ackText is the synthetic assistant reply that follows it.
const (
	summaryFraming = "The earlier part of this conversation was condensed to stay within the context window. Previous conversation summary:\n\n"
	ackText        = "Understood. I have the summary of the previous conversation and will continue from there."
)

// Compact summarizes and rewrites the store's history, keeping the most
// recent messages verbatim. An ineligible history returns a zero Result with
// no error and no mutation. A summarizer failure returns an error, also with
// no mutation; compaction is never partially applied.
func (c *Compactor) Compact(ctx context.Context, store *memory.Store, opts Options) (*Result, error) {
	keepRecent := opts.KeepRecent
	if keepRecent <= 0 {
		keepRecent = c.config.KeepRecent
	}

	messages := store.Messages()
	if len(messages) <= keepRecent+eligibilityMargin {
		c.logger.Debug("history too short to compact",
			"messages", len(messages), "keep_recent", keepRecent)
		return &Result{}, nil
	}

	older := messages[:len(messages)-keepRecent]
	recent := messages[len(messages)-keepRecent:]

	model := opts.Model
	if model == "" {
		model = c.config.SummarizerModel
	}

	c.logger.Info("starting compaction",
		"messages", len(messages), "summarizing", len(older), "model", model)

	summary, err := c.completer.Complete(ctx, Request{
		Model:       model,
		MaxTokens:   c.config.SummarizerMaxTokens,
		Temperature: c.config.SummarizerTemperature,
		APIKey:      opts.APIKey,
		System:      SummarizationSystemPrompt,
		Prompt:      BuildSummarizationUserPrompt(FormatMessagesForSummary(older)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}
	if strings.TrimSpace(summary) == "" {
		return nil, fmt.Errorf("%w: empty response from summarizer", ErrSummarizationFailed)
	}

	store.Clear()

	summaryMsg := types.NewTextMessage(types.RoleUser, summaryFraming+summary)
	summaryMsg.IsSummary = true
	store.Append(summaryMsg)

	ackMsg := types.NewTextMessage(types.RoleAssistant, ackText)
	ackMsg.IsSummary = true
	store.Append(ackMsg)

	for _, msg := range recent {
		store.Append(msg)
	}

	stats := store.Stats()
	result := &Result{
		Compacted:        true,
		RemovedMessages:  len(older),
		NewTokenEstimate: stats.EstimatedTokens,
		Summary:          summary,
	}

	c.logger.Info("compaction complete",
		"removed_messages", result.RemovedMessages,
		"new_token_estimate", result.NewTokenEstimate)

	return result, nil
}

// Config returns the compactor's configuration.
func (c *Compactor) Config() *Config {
	return c.config
}
