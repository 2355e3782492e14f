// Package anthropic converts between the module's message types and the
// Anthropic SDK's wire types.
package anthropic

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/modelgate/sessions/types"
)

// structuredPlaceholder stands in for non-text content when a block cannot
// be forwarded verbatim.
const structuredPlaceholder = "[non-text content]"

// ConvertMessages converts module messages to Anthropic message parameters.
// System messages are skipped; the system prompt travels separately.
func ConvertMessages(messages []types.Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == types.RoleSystem {
			continue
		}

		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, block := range msg.Content {
			blocks = append(blocks, convertContentBlock(block))
		}

		params = append(params, anthropic.MessageParam{
			Role:    anthropic.MessageParamRole(msg.Role),
			Content: blocks,
		})
	}

	return params
}

// convertContentBlock converts a single content block. Structured blocks are
// forwarded as raw JSON text so the model sees the payload.
func convertContentBlock(block types.ContentBlock) anthropic.ContentBlockParamUnion {
	switch block.Type {
	case types.ContentTypeText:
		return anthropic.NewTextBlock(block.Text)

	case types.ContentTypeStructured:
		if len(block.Data) > 0 {
			return anthropic.NewTextBlock(string(block.Data))
		}
	}

	return anthropic.NewTextBlock(structuredPlaceholder)
}

// BuildSystemPrompt creates system prompt blocks.
func BuildSystemPrompt(systemPrompt string) []anthropic.TextBlockParam {
	return []anthropic.TextBlockParam{
		{Text: systemPrompt},
	}
}

// ExtractText concatenates the text blocks of an API response.
func ExtractText(message *anthropic.Message) string {
	var out strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(text.Text)
		}
	}
	return out.String()
}
