package keywords

import "context"

// DefaultMaxSuggestions is how many suggestions are kept per search term.
const DefaultMaxSuggestions = 5

// Map holds the autocomplete suggestions found for each search term. Terms
// whose lookup failed have no entry.
type Map map[string][]string

// Provider returns autocomplete suggestions for a single search term.
type Provider interface {
	Suggest(ctx context.Context, term string) ([]string, error)
	// Name labels the provider in logs.
	Name() string
}
