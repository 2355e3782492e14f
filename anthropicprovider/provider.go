// Package anthropicprovider implements the session runtime and the
// summarization completer on top of the Anthropic API.
//
// Usage:
//
//	provider := anthropicprovider.New()
//	manager, _ := sessions.NewManager(provider, resolver, provider)
package anthropicprovider

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/modelgate/sessions"
	"github.com/modelgate/sessions/compaction"
	"github.com/modelgate/sessions/internal/anthropic"
)

// DefaultMaxTokens bounds assistant replies when no limit is configured.
const DefaultMaxTokens = 4096

// Provider builds Anthropic-backed sessions and serves summarization
// requests. It implements both sessions.Runtime and compaction.Completer.
type Provider struct {
	maxTokens int

	// clientOptions is appended to every SDK client, after the credential.
	// Tests use it to point the client at a stub server.
	clientOptions []option.RequestOption
}

// New creates a Provider.
func New(opts ...option.RequestOption) *Provider {
	return &Provider{
		maxTokens:     DefaultMaxTokens,
		clientOptions: opts,
	}
}

// NewSession implements sessions.Runtime.
func (p *Provider) NewSession(ctx context.Context, params sessions.SessionParams) (sessions.Handle, error) {
	if params.APIKey == "" {
		return nil, fmt.Errorf("anthropicprovider: api key is required")
	}
	if params.Model == "" {
		return nil, fmt.Errorf("anthropicprovider: model is required")
	}

	client := p.newClient(params.APIKey)
	return newSession(&client, params, p.maxTokens), nil
}

// Complete implements compaction.Completer with a single non-streaming
// messages call.
func (p *Provider) Complete(ctx context.Context, req compaction.Request) (string, error) {
	client := p.newClient(req.APIKey)

	message, err := client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: sdk.Float(req.Temperature),
		System:      anthropic.BuildSystemPrompt(req.System),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropicprovider: summarization call failed: %w", err)
	}

	return anthropic.ExtractText(message), nil
}

func (p *Provider) newClient(apiKey string) sdk.Client {
	opts := make([]option.RequestOption, 0, len(p.clientOptions)+1)
	opts = append(opts, option.WithAPIKey(apiKey))
	opts = append(opts, p.clientOptions...)
	return sdk.NewClient(opts...)
}

var (
	_ sessions.Runtime     = (*Provider)(nil)
	_ compaction.Completer = (*Provider)(nil)
)
