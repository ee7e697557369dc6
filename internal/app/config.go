package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	URL           string
	OutputPath    string
	OutputPDFPath string

	// LLM
	LLMBaseURL    string
	LLMModel      string
	LLMAPIKey     string
	LLMMaxRetries int
	LLMTimeout    time.Duration
	LLMMaxTokens  int

	// Keyword lookup
	SerpAPIKey         string
	SerpAPIURL         string
	KeywordsFile       string
	KeywordConcurrency int
	MaxSuggestions     int

	// Generation sizes
	HeadingCount   int
	TermCount      int
	MaxInputTokens int

	// Fetching
	FetchTimeout time.Duration
	// FetchMaxAttempts includes the first request. Zero means one attempt.
	FetchMaxAttempts int
	UserAgent        string

	// Behavior
	DryRun           bool
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	Verbose          bool
	LogFile          string
}

// Defaults applied by the CLI and by ApplyFileConfig when deciding whether a
// field was set explicitly.
const (
	DefaultOutputPath         = "seo_final_results.json"
	DefaultCacheDir           = ".goseo-cache"
	DefaultUserAgent          = "goseo/1.0 (+https://github.com/hyperifyio/goseo)"
	DefaultLLMMaxRetries      = 2
	DefaultKeywordConcurrency = 4
	DefaultMaxSuggestions     = 5
	DefaultCount              = 10
	DefaultMaxInputTokens     = 12000
	DefaultFetchTimeout       = 10 * time.Second
)
