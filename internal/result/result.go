package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// DefaultFilename is where the artifact is written when no path is given.
const DefaultFilename = "seo_final_results.json"

// Artifact is the persisted outcome of one pipeline run.
type Artifact struct {
	URL           string              `json:"url"`
	FinalHeadings []string            `json:"final_headings"`
	SEOKeywords   map[string][]string `json:"seo_keywords"`
}

// New builds an artifact, replacing nil collections with empty ones so that
// they serialize as [] and {}.
func New(url string, headings []string, keywords map[string][]string) Artifact {
	if headings == nil {
		headings = []string{}
	}
	kw := make(map[string][]string, len(keywords))
	for term, suggestions := range keywords {
		if suggestions == nil {
			suggestions = []string{}
		}
		kw[term] = suggestions
	}
	return Artifact{URL: url, FinalHeadings: headings, SEOKeywords: kw}
}

// Marshal renders a as 4-space indented UTF-8 JSON without HTML escaping.
// Map keys are sorted, so equal artifacts render to identical bytes.
func Marshal(a Artifact) ([]byte, error) {
	a = New(a.URL, a.FinalHeadings, a.SEOKeywords)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes a to path, replacing any existing file. The write is not
// atomic.
func Write(path string, a Artifact) error {
	if path == "" {
		path = DefaultFilename
	}
	data, err := Marshal(a)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// Read loads an artifact previously written by Write.
func Read(path string) (Artifact, error) {
	var a Artifact
	b, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return a, fmt.Errorf("parse result: %w", err)
	}
	return a, nil
}
