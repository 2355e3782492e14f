package types

// ApproximateTokens estimates the token count of a string as ceil(len/4).
// This is a fixed, documented approximation applied uniformly across the
// library, not an exact tokenizer call.
func ApproximateTokens(content string) int {
	if len(content) == 0 {
		return 0
	}
	return (len(content) + 3) / 4
}
