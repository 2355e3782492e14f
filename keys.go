package sessions

import "strings"

// keySeparator joins the components of a composite cache key.
const keySeparator = ":"

// EncodeKey builds a cache key from identifier components. Separator
// characters occurring inside a component are escaped before joining, so two
// distinct component tuples can never collide even when a component itself
// contains the separator. The escape character is escaped first, which keeps
// the encoding reversible in principle.
func EncodeKey(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		part = strings.ReplaceAll(part, `\`, `\\`)
		part = strings.ReplaceAll(part, keySeparator, `\`+keySeparator)
		escaped[i] = part
	}
	return strings.Join(escaped, keySeparator)
}

// chatKey derives the cache key for a provider/model chat session.
func chatKey(provider, model string) string {
	return EncodeKey("chat", provider, model)
}
