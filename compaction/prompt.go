package compaction

import (
	"strings"

	"github.com/modelgate/sessions/types"
)

// SummarizationSystemPrompt instructs the summarizer model. It asks for a
// concise synopsis rather than a structured report: the summary becomes part
// of the ongoing conversation, not a document.
const SummarizationSystemPrompt = `You are a conversation summarizer. Your task is to produce a concise synopsis of a conversation between a user and an AI assistant, so the conversation can continue with the synopsis standing in for the original messages.

Guidelines:
- Capture the user's goals, decisions made, and any constraints or preferences expressed
- Preserve specific details that later turns may depend on (names, identifiers, numbers, file paths, error messages)
- Keep chronological order
- Do not add information that was not in the conversation
- Be brief: a few short paragraphs or a compact bullet list`

// NonTextPlaceholder stands in for structured message content in the text
// sent to the summarizer. Opaque payloads are never forwarded.
const NonTextPlaceholder = "[non-text content]"

// BuildSummarizationUserPrompt creates the user message for a summarization
// request.
func BuildSummarizationUserPrompt(conversationText string) string {
	return `Summarize the following conversation.

<conversation>
` + conversationText + `
</conversation>

Reply with the synopsis only.`
}

// FormatMessagesForSummary renders messages as labeled text for the
// summarizer. Structured content blocks are replaced with NonTextPlaceholder.
func FormatMessagesForSummary(messages []types.Message) string {
	var b strings.Builder
	for i := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(roleLabel(messages[i].Role))
		b.WriteString(":\n")
		b.WriteString(renderContent(&messages[i]))
	}
	return b.String()
}

func roleLabel(role types.Role) string {
	switch role {
	case types.RoleAssistant:
		return "Assistant"
	case types.RoleSystem:
		return "System"
	default:
		return "User"
	}
}

func renderContent(msg *types.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if block.IsText() {
			if block.Text != "" {
				parts = append(parts, block.Text)
			}
			continue
		}
		parts = append(parts, NonTextPlaceholder)
	}
	return strings.Join(parts, "\n")
}
