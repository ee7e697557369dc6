// Package jsonlist turns loosely formatted model output into a list of
// strings, substituting a deterministic fallback when the output is unusable.
package jsonlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNotArray is returned when the payload is valid JSON but not an array.
var ErrNotArray = errors.New("json value is not an array")

// StripFences removes every ```json and ``` marker and surrounding whitespace.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// Parse strips code fences from raw and decodes it as a JSON array. String
// items are returned as-is; any other item is kept as its compact JSON text.
func Parse(raw string) ([]string, error) {
	text := StripFences(raw)
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: got %s", ErrNotArray, typeErr.Value)
		}
		return nil, err
	}
	if items == nil {
		// literal null
		return nil, ErrNotArray
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if len(item) > 0 && item[0] == '"' {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				out = append(out, s)
				continue
			}
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, item); err != nil {
			out = append(out, string(item))
			continue
		}
		out = append(out, buf.String())
	}
	return out, nil
}

// Valid reports whether raw parses as a JSON list.
func Valid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Fallback returns n items named by name(i) for i in 1..n.
func Fallback(n int, name func(i int) string) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	for i := range out {
		out[i] = name(i + 1)
	}
	return out
}

// Pattern returns a name generator that formats i into pattern, e.g.
// Pattern("Fallback SEO Heading %d").
func Pattern(pattern string) func(i int) string {
	return func(i int) string { return fmt.Sprintf(pattern, i) }
}

// ParseOrFallback parses raw and falls back to Fallback(want, name) when it
// cannot. The expected count is advisory: a parsed list of a different length
// is returned unchanged.
func ParseOrFallback(stage string, raw string, want int, name func(i int) string) []string {
	items, err := Parse(raw)
	if err != nil {
		log.Warn().Err(err).Str("stage", stage).Msg("model did not return a valid JSON list; using fallback")
		return Fallback(want, name)
	}
	if len(items) != want {
		log.Debug().Str("stage", stage).Int("want", want).Int("got", len(items)).Msg("list length differs from request")
	}
	return items
}

// Example renders the `["<label> 1", "<label> 2", ..., "<label> n"]` shape
// used in prompts to show the model the expected answer.
func Example(label string, n int) string {
	if n <= 2 {
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, strconv.Quote(label+" "+strconv.Itoa(i)))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "[" + strconv.Quote(label+" 1") + ", " + strconv.Quote(label+" 2") + ", ..., " + strconv.Quote(label+" "+strconv.Itoa(n)) + "]"
}
