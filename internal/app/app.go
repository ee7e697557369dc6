package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/goseo/internal/budget"
	"github.com/hyperifyio/goseo/internal/cache"
	"github.com/hyperifyio/goseo/internal/extract"
	"github.com/hyperifyio/goseo/internal/fetch"
	"github.com/hyperifyio/goseo/internal/headings"
	"github.com/hyperifyio/goseo/internal/keywords"
	"github.com/hyperifyio/goseo/internal/llm"
	"github.com/hyperifyio/goseo/internal/result"
	"github.com/hyperifyio/goseo/internal/summarize"
	"github.com/hyperifyio/goseo/internal/terms"
)

// ErrFetchFailed is returned when the target page could not be retrieved.
var ErrFetchFailed = errors.New("failed to fetch page")

// App wires the pipeline stages together for a single run.
type App struct {
	cfg    Config
	out    io.Writer
	client *http.Client
	models llm.ModelLister

	extractor  *extract.Extractor
	summarizer *summarize.Summarizer
	headings   *headings.Generator
	terms      *terms.Generator
	enricher   *keywords.Enricher
	refiner    *headings.Refiner
}

// New wires the pipeline stages for cfg. Unless cfg.DryRun is set it also
// checks that the model server answers.
func New(ctx context.Context, cfg Config) (*App, error) {
	httpClient := newHTTPClient()

	transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		transportCfg.BaseURL = cfg.LLMBaseURL
	}
	transportCfg.HTTPClient = httpClient
	provider := &llm.OpenAIProvider{Inner: openai.NewClientWithConfig(transportCfg)}

	var (
		pageCache *cache.HTTPCache
		llmCache  *cache.LLMCache
	)
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		pageCache = &cache.HTTPCache{Dir: filepath.Join(cfg.CacheDir, "pages")}
		llmCache = &cache.LLMCache{Dir: filepath.Join(cfg.CacheDir, "completions"), StrictPerms: cfg.CacheStrictPerms}
		if cfg.CacheMaxAge > 0 {
			// Best-effort; a failure only leaves stale entries behind.
			n1, _ := pageCache.PurgeOlderThan(cfg.CacheMaxAge)
			n2, _ := llmCache.PurgeOlderThan(cfg.CacheMaxAge)
			log.Debug().Int("pages", n1).Int("completions", n2).Msg("purged expired cache entries")
		}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	fetcher := &fetch.Client{
		HTTPClient:        httpClient,
		UserAgent:         ua,
		MaxAttempts:       cfg.FetchMaxAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		Cache:             pageCache,
	}

	maxRetries := cfg.LLMMaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultLLMMaxRetries
	}
	gen := &llm.Completer{
		Client:     provider,
		Model:      cfg.LLMModel,
		MaxTokens:  cfg.LLMMaxTokens,
		MaxRetries: maxRetries,
		Timeout:    cfg.LLMTimeout,
		Cache:      llmCache,
	}

	maxInput := cfg.MaxInputTokens
	if maxInput == 0 {
		maxInput = DefaultMaxInputTokens
	}

	a := &App{
		cfg:        cfg,
		out:        os.Stdout,
		client:     httpClient,
		models:     provider,
		extractor:  &extract.Extractor{Fetcher: fetcher},
		summarizer: &summarize.Summarizer{LLM: gen, MaxInputTokens: maxInput},
		headings:   &headings.Generator{LLM: gen, Count: cfg.HeadingCount},
		terms:      &terms.Generator{LLM: gen, Count: cfg.TermCount},
		enricher: &keywords.Enricher{
			Provider:       keywordProvider(cfg, httpClient, ua),
			Concurrency:    cfg.KeywordConcurrency,
			MaxSuggestions: cfg.MaxSuggestions,
		},
		refiner: &headings.Refiner{LLM: gen, Count: cfg.HeadingCount},
	}

	if !cfg.DryRun {
		a.preflight(ctx)
	}
	return a, nil
}

// keywordProvider prefers the live API, then an offline file. With neither
// configured the enricher is left without a provider and yields an empty map.
func keywordProvider(cfg Config, httpClient *http.Client, ua string) keywords.Provider {
	switch {
	case strings.TrimSpace(cfg.SerpAPIKey) != "":
		return &keywords.SerpAPI{
			BaseURL:        cfg.SerpAPIURL,
			APIKey:         cfg.SerpAPIKey,
			HTTPClient:     httpClient,
			UserAgent:      ua,
			MaxSuggestions: cfg.MaxSuggestions,
		}
	case strings.TrimSpace(cfg.KeywordsFile) != "":
		return &keywords.FileProvider{Path: cfg.KeywordsFile, MaxSuggestions: cfg.MaxSuggestions}
	}
	return nil
}

// preflight lists models as a connectivity check. Failure only warns; the
// generation stages have their own fallbacks.
func (a *App) preflight(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := a.models.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}
}

// SetOutput redirects the human-readable run summary. Defaults to stdout.
func (a *App) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	a.out = w
}

// Close releases idle connections held by the shared HTTP client.
func (a *App) Close() {
	a.client.CloseIdleConnections()
}

// Run executes the pipeline once for the configured URL.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	url := a.cfg.URL

	log.Info().Str("stage", "extract").Str("url", url).Msg("extracting page content")
	page := a.extractor.Extract(ctx, url)
	switch page.Status {
	case extract.StatusFetchFailed:
		return fmt.Errorf("%w: %v", ErrFetchFailed, page.Err)
	case extract.StatusNoContent:
		// The sentinel text still goes through the pipeline; later stages
		// fall back where the model cannot work with it.
		log.Warn().Str("stage", "extract").Str("url", url).Msg(extract.NoContentMessage)
	}
	content := page.Text()

	if a.cfg.DryRun {
		return a.dryRun(content)
	}

	log.Info().Str("stage", "summarize").Int("chars", len(content)).Msg("summarizing content")
	summary := a.summarizer.Summarize(ctx, content)

	log.Info().Str("stage", "headings").Msg("generating headings")
	initial := a.headings.Generate(ctx, summary)

	log.Info().Str("stage", "terms").Msg("generating search terms")
	searchTerms := a.terms.Generate(ctx, summary)

	log.Info().Str("stage", "keywords").Int("count", len(searchTerms)).Msg("fetching keyword suggestions")
	kw := a.enricher.Enrich(ctx, searchTerms)

	log.Info().Str("stage", "refine").Msg("refining headings")
	final := a.refiner.Refine(ctx, initial, kw)

	// A cancelled run leaves fallback values in every later stage; do not
	// persist them.
	if err := ctx.Err(); err != nil {
		return err
	}

	art := result.New(url, final, kw)
	outPath := a.cfg.OutputPath
	if outPath == "" {
		outPath = result.DefaultFilename
	}
	if err := result.Write(outPath, art); err != nil {
		return err
	}
	if a.cfg.OutputPDFPath != "" {
		if err := writeResultPDF(art, a.cfg.OutputPDFPath); err != nil {
			log.Warn().Err(err).Str("path", a.cfg.OutputPDFPath).Msg("pdf render failed")
		}
	}

	fmt.Fprintln(a.out, "Final SEO-optimized headings:")
	for i, h := range art.FinalHeadings {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, h)
	}
	fmt.Fprintf(a.out, "SEO results saved to %s\n", outPath)

	log.Info().Str("output", outPath).Int("headings", len(art.FinalHeadings)).
		Int("terms", len(art.SEOKeywords)).Dur("elapsed", time.Since(start)).Msg("run complete")
	return nil
}

// dryRun reports what the summarizer would receive without calling any
// external service beyond the page fetch.
func (a *App) dryRun(content string) error {
	limit := a.cfg.MaxInputTokens
	if limit == 0 {
		limit = DefaultMaxInputTokens
	}
	embedded, truncated := budget.TruncateToTokens(content, limit)
	tokens := budget.EstimateTokens(summarize.BuildPrompt(embedded))
	fits := a.cfg.LLMModel == "" || budget.FitsInContext(a.cfg.LLMModel, a.cfg.LLMMaxTokens, tokens)
	log.Info().Str("stage", "dry-run").Int("chars", len(content)).Int("prompt_tokens", tokens).
		Bool("truncated", truncated).Bool("fits_context", fits).Msg("dry run: no model or keyword calls made")
	fmt.Fprintf(a.out, "Dry run for %s\n", a.cfg.URL)
	fmt.Fprintf(a.out, "Extracted characters: %d\n", len(content))
	fmt.Fprintf(a.out, "Estimated summary prompt tokens: %d\n", tokens)
	if truncated {
		fmt.Fprintf(a.out, "Content exceeds %d tokens and would be truncated\n", limit)
	}
	return nil
}
