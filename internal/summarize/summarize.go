package summarize

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goseo/internal/budget"
	"github.com/hyperifyio/goseo/internal/llm"
)

// NoSummary is returned when the model produced nothing usable.
const NoSummary = "No summary available."

// DefaultMaxInputTokens caps the article text embedded in the prompt.
const DefaultMaxInputTokens = 12_000

// Summarizer condenses extracted page text into a short prose summary.
type Summarizer struct {
	LLM llm.Generator
	// MaxInputTokens caps the estimated size of the embedded article. Zero
	// means DefaultMaxInputTokens; a negative value disables the cap.
	MaxInputTokens int
}

// Summarize returns a five-sentence summary of content, or NoSummary when the
// model call fails or answers with nothing.
func (s *Summarizer) Summarize(ctx context.Context, content string) string {
	limit := s.MaxInputTokens
	if limit == 0 {
		limit = DefaultMaxInputTokens
	}
	if cut, truncated := budget.TruncateToTokens(content, limit); truncated {
		log.Warn().Str("stage", "summarize").Int("max_tokens", limit).
			Int("original_tokens", budget.EstimateTokens(content)).Msg("article truncated to fit input budget")
		content = cut
	}
	out, err := s.LLM.Complete(ctx, BuildPrompt(content))
	if err != nil {
		log.Warn().Err(err).Str("stage", "summarize").Msg("summary generation failed")
		return NoSummary
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return NoSummary
	}
	return out
}

// BuildPrompt embeds content verbatim into the summarization instructions.
func BuildPrompt(content string) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following article in **5 concise sentences**, highlighting the **core topic** and key points.\n\n")
	sb.WriteString("**Article:**\n")
	sb.WriteString(content)
	sb.WriteString("\n\n**Summary Output:**\n")
	return sb.String()
}
