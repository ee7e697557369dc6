package keywords

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of lookups in flight at once.
const DefaultConcurrency = 4

// Enricher looks up autocomplete suggestions for a list of search terms.
type Enricher struct {
	Provider Provider
	// Concurrency bounds in-flight lookups. 1 queries terms one at a time in
	// list order.
	Concurrency    int
	MaxSuggestions int
}

// Enrich returns suggestions for every term whose lookup succeeded. Failed
// lookups are logged and left out of the map. Duplicate terms are queried
// once. Cancelling ctx stops dispatching new lookups.
func (e *Enricher) Enrich(ctx context.Context, terms []string) Map {
	out := make(Map, len(terms))
	if e.Provider == nil {
		log.Warn().Str("stage", "keywords").Msg("no keyword provider configured; skipping enrichment")
		return out
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	maxSuggestions := limitOrDefault(e.MaxSuggestions)

	var (
		mu   sync.Mutex
		g    errgroup.Group
		seen = make(map[string]struct{}, len(terms))
	)
	g.SetLimit(limit)
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Str("stage", "keywords").Msg("enrichment cancelled")
			break
		}
		g.Go(func() error {
			log.Info().Str("stage", "keywords").Str("provider", e.Provider.Name()).Str("term", term).Msg("fetching SEO data")
			suggestions, err := e.Provider.Suggest(ctx, term)
			if err != nil {
				log.Warn().Err(err).Str("stage", "keywords").Str("term", term).Msg("keyword lookup failed; term omitted")
				return nil
			}
			if len(suggestions) > maxSuggestions {
				suggestions = suggestions[:maxSuggestions]
			}
			if suggestions == nil {
				suggestions = []string{}
			}
			mu.Lock()
			out[term] = suggestions
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
