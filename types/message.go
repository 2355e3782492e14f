package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Role represents the message role
type Role string

const (
	// RoleUser represents a user message
	RoleUser Role = "user"

	// RoleAssistant represents an assistant message
	RoleAssistant Role = "assistant"

	// RoleSystem represents a system message
	RoleSystem Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ContentType represents the type of content block
type ContentType string

const (
	// ContentTypeText represents plain text content
	ContentTypeText ContentType = "text"

	// ContentTypeStructured represents opaque structured content
	// (tool invocations, tool results, images, documents). The payload is
	// carried verbatim and is never interpreted by this library.
	ContentTypeStructured ContentType = "structured"
)

// ContentBlock is one piece of message content, either plain text or an
// opaque structured payload.
type ContentBlock struct {
	Type ContentType `json:"type"`

	// Text content, set when Type is ContentTypeText.
	Text string `json:"text,omitempty"`

	// Structured payload, set when Type is ContentTypeStructured.
	Data json.RawMessage `json:"data,omitempty"`
}

// TextBlock returns a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: text}
}

// StructuredBlock returns a structured content block carrying an opaque payload.
func StructuredBlock(data json.RawMessage) ContentBlock {
	return ContentBlock{Type: ContentTypeStructured, Data: data}
}

// IsText reports whether the block is plain text.
func (b ContentBlock) IsText() bool {
	return b.Type == ContentTypeText
}

// Message represents a conversation message
type Message struct {
	Role      Role           `json:"role"`
	Content   []ContentBlock `json:"content"`
	CreatedAt time.Time      `json:"created_at"`

	// IsSummary marks a synthetic message produced by context compaction.
	IsSummary bool `json:"is_summary,omitempty"`
}

// NewTextMessage creates a message with a single text block.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Role:      role,
		Content:   []ContentBlock{TextBlock(text)},
		CreatedAt: time.Now(),
	}
}

// Text returns the concatenated text content of the message. Structured
// blocks contribute nothing; use IsPlainText to detect them.
func (m Message) Text() string {
	var parts []string
	for _, block := range m.Content {
		if block.IsText() && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// IsPlainText reports whether every content block of the message is text.
func (m Message) IsPlainText() bool {
	for _, block := range m.Content {
		if !block.IsText() {
			return false
		}
	}
	return true
}

// EstimatedTokens returns the approximate token count of the message using
// the fixed chars/4 policy. Structured payloads are estimated from their
// raw encoded length.
func (m Message) EstimatedTokens() int {
	total := 0
	for _, block := range m.Content {
		if block.IsText() {
			total += ApproximateTokens(block.Text)
		} else {
			total += ApproximateTokens(string(block.Data))
		}
	}
	return total
}
