package headings

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goseo/internal/jsonlist"
	"github.com/hyperifyio/goseo/internal/llm"
)

// DefaultCount is the number of headings requested from the model.
const DefaultCount = 10

// Fallback name patterns, formatted with a 1-based index.
const (
	FallbackPattern          = "Fallback SEO Heading %d"
	FallbackOptimizedPattern = "Fallback Optimized Heading %d"
)

// Generator proposes SEO headings for an article summary.
type Generator struct {
	LLM   llm.Generator
	Count int
}

// Generate returns the model's headings, or a fallback list when the model
// call fails or its answer is not a JSON list.
func (g *Generator) Generate(ctx context.Context, summary string) []string {
	n := count(g.Count)
	raw, err := llm.CompleteValid(ctx, g.LLM, BuildPrompt(summary, n), jsonlist.Valid)
	if err != nil {
		log.Warn().Err(err).Str("stage", "headings").Msg("heading generation failed; using fallback")
		return jsonlist.Fallback(n, jsonlist.Pattern(FallbackPattern))
	}
	return jsonlist.ParseOrFallback("headings", raw, n, jsonlist.Pattern(FallbackPattern))
}

// Refiner rewrites headings so that they carry researched keywords.
type Refiner struct {
	LLM   llm.Generator
	Count int
}

// Refine returns improved headings, or a fallback list when the model call
// fails or its answer is not a JSON list.
func (r *Refiner) Refine(ctx context.Context, original []string, keywords map[string][]string) []string {
	n := count(r.Count)
	prompt, err := BuildRefinePrompt(original, keywords, n)
	if err == nil {
		var raw string
		raw, err = llm.CompleteValid(ctx, r.LLM, prompt, jsonlist.Valid)
		if err == nil {
			return jsonlist.ParseOrFallback("refine", raw, n, jsonlist.Pattern(FallbackOptimizedPattern))
		}
	}
	log.Warn().Err(err).Str("stage", "refine").Msg("failed to generate improved headings; using fallback")
	return jsonlist.Fallback(n, jsonlist.Pattern(FallbackOptimizedPattern))
}

func count(n int) int {
	if n <= 0 {
		return DefaultCount
	}
	return n
}

// BuildPrompt asks for n SEO headings based on summary.
func BuildPrompt(summary string, n int) string {
	var sb strings.Builder
	sb.WriteString("Based on the **article summary** below, generate **")
	sb.WriteString(strconv.Itoa(n))
	sb.WriteString(" SEO-optimized headings** that:\n")
	sb.WriteString("- Are **highly relevant** to the article content.\n")
	sb.WriteString("- Include **powerful SEO keywords** to attract search traffic.\n")
	sb.WriteString("- Read as **H1 or H2 headings** (e.g., \"Why India Lost the Cricket World Cup 2023\").\n\n")
	sb.WriteString("**Article Summary:**\n")
	sb.WriteString(summary)
	sb.WriteString("\n\n**Return format (Valid JSON List, NO extra text):**\n")
	sb.WriteString("```json\n")
	sb.WriteString(jsonlist.Example("Heading", n))
	sb.WriteString("\n```\n")
	return sb.String()
}

// BuildRefinePrompt embeds the original headings and the keyword research as
// indented JSON and asks for n improved headings.
func BuildRefinePrompt(original []string, keywords map[string][]string, n int) (string, error) {
	if original == nil {
		original = []string{}
	}
	if keywords == nil {
		keywords = map[string][]string{}
	}
	headingsJSON, err := json.MarshalIndent(original, "", "  ")
	if err != nil {
		return "", err
	}
	keywordsJSON, err := json.MarshalIndent(keywords, "", "  ")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("Improve the **")
	sb.WriteString(strconv.Itoa(n))
	sb.WriteString(" SEO headings** below by ensuring they **contain the most optimized keywords** extracted from SEO research.\n\n")
	sb.WriteString("**Original SEO-Optimized Headings:**\n")
	sb.Write(headingsJSON)
	sb.WriteString("\n\n**SEO Keywords Extracted:**\n")
	sb.Write(keywordsJSON)
	sb.WriteString("\n\n**Return format (Valid JSON List, NO extra text):**\n")
	sb.WriteString("```json\n")
	sb.WriteString(jsonlist.Example("Improved Heading", n))
	sb.WriteString("\n```\n")
	return sb.String(), nil
}
