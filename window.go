package sessions

// DefaultContextWindow is the conservative fallback used when a model is not
// in the window table and its provider has no default.
const DefaultContextWindow = 8192

// contextWindows maps "provider/model" to the model's context window in
// tokens. Values track published provider limits.
var contextWindows = map[string]int{
	"anthropic/claude-3-5-haiku-20241022":  200000,
	"anthropic/claude-3-5-sonnet-20241022": 200000,
	"anthropic/claude-sonnet-4-5-20250929": 200000,
	"anthropic/claude-opus-4-5-20251101":   200000,
	"openai/gpt-4o":                        128000,
	"openai/gpt-4o-mini":                   128000,
	"openai/gpt-4.1":                       1047576,
	"openai/o3-mini":                       200000,
	"google/gemini-2.0-flash":              1048576,
	"google/gemini-1.5-pro":                2097152,
	"mistral/mistral-large-latest":         131072,
	"meta/llama-3.3-70b":                   131072,
}

// providerWindows maps a provider to the window assumed for its unlisted
// models.
var providerWindows = map[string]int{
	"anthropic": 200000,
	"openai":    128000,
	"google":    1048576,
	"mistral":   32768,
	"meta":      131072,
}

// ResolveContextWindow determines the maximum token budget for a
// provider/model pair. A positive override is returned verbatim; otherwise
// the model table is consulted, then the provider default, then
// DefaultContextWindow.
func ResolveContextWindow(provider, model string, override int) int {
	if override > 0 {
		return override
	}
	if window, ok := contextWindows[provider+"/"+model]; ok {
		return window
	}
	if window, ok := providerWindows[provider]; ok {
		return window
	}
	return DefaultContextWindow
}
