package sessions

import (
	"strings"

	"github.com/modelgate/sessions/types"
)

// headingMarker introduces a named section inside a composed system prompt.
const headingMarker = "## "

// ContextSection is one named slice of a system prompt with its token
// estimate.
type ContextSection struct {
	Name          string `json:"name"`
	TokenEstimate int    `json:"token_estimate"`
}

// ContextBreakdown describes how a cached session's context budget is spent.
// Section estimates are rounded independently of the whole-prompt estimate,
// so their sum may slightly exceed SystemPromptTokens; that over-count is
// expected and left uncorrected.
type ContextBreakdown struct {
	SystemPromptTokens   int              `json:"system_prompt_tokens"`
	MessageHistoryTokens int              `json:"message_history_tokens"`
	MessageCount         int              `json:"message_count"`
	MaxContextTokens     int              `json:"max_context_tokens"`
	Sections             []ContextSection `json:"sections"`
}

// buildContextBreakdown derives a breakdown from a handle's prompt and
// memory statistics.
func buildContextBreakdown(handle Handle, maxContextTokens int) *ContextBreakdown {
	prompt := handle.SystemPrompt()
	stats := handle.Memory().Stats()

	return &ContextBreakdown{
		SystemPromptTokens:   types.ApproximateTokens(prompt),
		MessageHistoryTokens: stats.EstimatedTokens,
		MessageCount:         stats.MessageCount,
		MaxContextTokens:     maxContextTokens,
		Sections:             splitPromptSections(prompt),
	}
}

// splitPromptSections splits a system prompt on second-level heading lines.
// Text before the first heading becomes a "Base Prompt" section; a prompt
// with no headings yields a single "System Prompt" section; an empty prompt
// yields no sections.
func splitPromptSections(prompt string) []ContextSection {
	if prompt == "" {
		return nil
	}

	lines := strings.Split(prompt, "\n")

	hasHeading := false
	for _, line := range lines {
		if strings.HasPrefix(line, headingMarker) {
			hasHeading = true
			break
		}
	}
	if !hasHeading {
		return []ContextSection{{
			Name:          "System Prompt",
			TokenEstimate: types.ApproximateTokens(prompt),
		}}
	}

	var sections []ContextSection
	name := ""
	var chunk []string

	flush := func() {
		text := strings.Join(chunk, "\n")
		chunk = nil
		if name == "" {
			// Preamble before the first heading.
			if strings.TrimSpace(text) == "" {
				return
			}
			name = "Base Prompt"
		}
		sections = append(sections, ContextSection{
			Name:          name,
			TokenEstimate: types.ApproximateTokens(text),
		})
		name = ""
	}

	for _, line := range lines {
		if strings.HasPrefix(line, headingMarker) {
			flush()
			name = strings.TrimSpace(strings.TrimPrefix(line, headingMarker))
			chunk = append(chunk, line)
			continue
		}
		chunk = append(chunk, line)
	}
	flush()

	return sections
}
