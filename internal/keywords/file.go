package keywords

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnknownTerm is returned by FileProvider for terms absent from its file.
var ErrUnknownTerm = errors.New("term not found")

// FileProvider serves suggestions from a local JSON file for offline or
// reproducible runs. The file holds an object mapping each term to a list of
// suggestions: {"term": ["suggestion", ...]}.
type FileProvider struct {
	Path           string
	MaxSuggestions int
}

// Name identifies the provider in logs.
func (f *FileProvider) Name() string { return "file" }

// Suggest looks term up exactly, then case-insensitively.
func (f *FileProvider) Suggest(_ context.Context, term string) ([]string, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var all map[string][]string
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	list, ok := all[term]
	if !ok {
		want := strings.ToLower(strings.TrimSpace(term))
		for k, v := range all {
			if strings.ToLower(strings.TrimSpace(k)) == want {
				list, ok = v, true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTerm, term)
	}
	limit := limitOrDefault(f.MaxSuggestions)
	if len(list) > limit {
		list = list[:limit]
	}
	return append([]string{}, list...), nil
}
