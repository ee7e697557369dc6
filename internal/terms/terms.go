package terms

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goseo/internal/jsonlist"
	"github.com/hyperifyio/goseo/internal/llm"
)

// DefaultCount is the number of search terms requested from the model.
const DefaultCount = 10

// FallbackPattern names fallback terms with a 1-based index.
const FallbackPattern = "fallback search %d"

// Generator proposes search-engine queries people would use to find an
// article.
type Generator struct {
	LLM   llm.Generator
	Count int
}

// Generate returns the model's search terms, or a fallback list when the
// model call fails or its answer is not a JSON list.
func (g *Generator) Generate(ctx context.Context, summary string) []string {
	n := g.Count
	if n <= 0 {
		n = DefaultCount
	}
	raw, err := llm.CompleteValid(ctx, g.LLM, BuildPrompt(summary, n), jsonlist.Valid)
	if err != nil {
		log.Warn().Err(err).Str("stage", "terms").Msg("search term generation failed; using fallback")
		return jsonlist.Fallback(n, jsonlist.Pattern(FallbackPattern))
	}
	return jsonlist.ParseOrFallback("terms", raw, n, jsonlist.Pattern(FallbackPattern))
}

// BuildPrompt asks for exactly n search terms based on summary.
func BuildPrompt(summary string, n int) string {
	var sb strings.Builder
	sb.WriteString("Based on the **article summary** below, generate **exactly ")
	sb.WriteString(strconv.Itoa(n))
	sb.WriteString(" SEO-optimized search terms** that people might search for on Google.\n\n")
	sb.WriteString("**Article Summary:**\n")
	sb.WriteString(summary)
	sb.WriteString("\n\n**Return format (Valid JSON List, NO extra text):**\n")
	sb.WriteString("```json\n")
	sb.WriteString(jsonlist.Example("search term", n))
	sb.WriteString("\n```\n")
	return sb.String()
}
