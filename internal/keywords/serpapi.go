package keywords

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultSerpAPIURL is the SerpAPI search endpoint.
const DefaultSerpAPIURL = "https://serpapi.com/search.json"

// SerpAPI implements Provider with SerpAPI's google_autocomplete engine.
type SerpAPI struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request. Zero means 10s.
	Timeout        time.Duration
	MaxSuggestions int
}

// Name identifies the provider in logs.
func (s *SerpAPI) Name() string { return "serpapi" }

// Suggest queries the autocomplete engine for term. Any status other than 200
// is an error.
func (s *SerpAPI) Suggest(ctx context.Context, term string) ([]string, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, errors.New("missing serpapi key")
	}
	base := s.BaseURL
	if base == "" {
		base = DefaultSerpAPIURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("engine", "google_autocomplete")
	q.Set("q", term)
	q.Set("api_key", s.APIKey)
	u.RawQuery = q.Encode()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	hc := s.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi status: %d", resp.StatusCode)
	}
	var ar autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	return ar.values(limitOrDefault(s.MaxSuggestions)), nil
}

type autocompleteResponse struct {
	Suggestions []any `json:"suggestions"`
}

// values returns the string "value" field of each suggestion in order,
// skipping entries without one, capped at limit.
func (r autocompleteResponse) values(limit int) []string {
	out := make([]string, 0, limit)
	for _, s := range r.Suggestions {
		if len(out) >= limit {
			break
		}
		obj, ok := s.(map[string]any)
		if !ok {
			continue
		}
		v, ok := obj["value"].(string)
		if !ok {
			continue
		}
		out = append(out, v)
	}
	return out
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxSuggestions
	}
	return n
}
