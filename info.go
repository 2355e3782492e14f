package sessions

import "math"

// SessionInfo is a point-in-time view of a cached session's context usage.
type SessionInfo struct {
	SessionID          string `json:"session_id"`
	MessageCount       int    `json:"message_count"`
	EstimatedTokens    int    `json:"estimated_tokens"`
	MaxContextTokens   int    `json:"max_context_tokens"`
	ContextFillPercent int    `json:"context_fill_percent"`
}

// buildSessionInfo derives SessionInfo from a handle's memory statistics.
func buildSessionInfo(handle Handle, maxContextTokens int) SessionInfo {
	stats := handle.Memory().Stats()
	return SessionInfo{
		SessionID:          handle.ConversationID(),
		MessageCount:       stats.MessageCount,
		EstimatedTokens:    stats.EstimatedTokens,
		MaxContextTokens:   maxContextTokens,
		ContextFillPercent: contextFillPercent(stats.EstimatedTokens, maxContextTokens),
	}
}

// contextFillPercent reports estimated/max as a percentage clamped to
// [0, 100]. Exceeding the window clamps to 100: the value is a capacity
// warning signal, not an error.
func contextFillPercent(estimatedTokens, maxContextTokens int) int {
	if maxContextTokens <= 0 || estimatedTokens <= 0 {
		return 0
	}
	percent := int(math.Round(float64(estimatedTokens) / float64(maxContextTokens) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}
