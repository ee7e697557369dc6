package budget

import (
	"math"
	"strings"
	"unicode/utf8"
)

// charsPerToken is the conservative English heuristic used for every estimate.
const charsPerToken = 4

// EstimateTokensFromChars converts a character count into an estimated token
// count (~4 chars per token). The result is always at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / charsPerToken))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(len(s))
}

// TruncateToTokens cuts s so that its estimated size stays within maxTokens.
// The cut happens on a rune boundary. A non-positive maxTokens disables the
// cap. The second return value reports whether anything was removed.
func TruncateToTokens(s string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || EstimateTokens(s) <= maxTokens {
		return s, false
	}
	limit := maxTokens * charsPerToken
	if limit >= len(s) {
		return s, false
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit], true
}

// ModelContextTokens returns an estimated maximum context window for a given
// model name. Unknown models fall back to a conservative default.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" {
		return 8192
	}
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	switch {
	case strings.HasSuffix(name, "1m"):
		return 1_000_000
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"):
		return 128_000
	case strings.Contains(name, "-mini"):
		return 128_000
	}
	return 8192
}

// FitsInContext reports whether a prompt of promptTokens fits into the
// model's context window when reservedForOutput tokens are kept free.
func FitsInContext(modelName string, reservedForOutput int, promptTokens int) bool {
	if reservedForOutput < 0 {
		reservedForOutput = 0
	}
	return ModelContextTokens(modelName)-reservedForOutput-promptTokens > 0
}

// knownModelMax contains rough context sizes for common model identifiers.
var knownModelMax = map[string]int{
	"gpt-4o":        128_000,
	"gpt-4o-mini":   128_000,
	"gpt-4-turbo":   128_000,
	"gpt-4.1":       1_000_000,
	"gpt-4.1-mini":  1_000_000,
	"gpt-3.5-turbo": 16_384,
	"llama-3":       8_192,
	"llama-3.1":     128_000,
	"gpt-oss-20b":   4_096,
}
