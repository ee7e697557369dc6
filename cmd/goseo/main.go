package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hyperifyio/goseo/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(console)

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}

	cfg, showVersion, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(1)
	}
	if showVersion {
		fmt.Printf("goseo %s (commit %s, built %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}

	logger, closeLog := newLogger(console, cfg.LogFile, uuid.NewString())
	defer closeLog()
	log.Logger = logger
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, os.Stdout)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		closeLog()
		os.Exit(exitCode(err))
	}
}

// loadConfig resolves configuration from flags, then environment, then an
// optional config file, then built-in defaults.
func loadConfig(args []string) (app.Config, bool, error) {
	var (
		cfg         app.Config
		configPath  string
		showVersion bool
	)
	fs := flag.NewFlagSet("goseo", flag.ContinueOnError)
	fs.StringVar(&cfg.URL, "url", "", "Article URL to analyze (or first positional argument; env SEO_URL)")
	fs.StringVar(&cfg.OutputPath, "output", "", "Path of the JSON result file (default "+app.DefaultOutputPath+")")
	fs.StringVar(&cfg.OutputPDFPath, "output.pdf", "", "Optional path of a PDF rendering of the results")
	fs.StringVar(&configPath, "config", os.Getenv("GOSEO_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&cfg.LLMModel, "llm.model", "", "Model name")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")
	fs.IntVar(&cfg.LLMMaxRetries, "llm.retries", 0, fmt.Sprintf("Retries per model call (default %d)", app.DefaultLLMMaxRetries))
	fs.DurationVar(&cfg.LLMTimeout, "llm.timeout", 0, "Timeout per model call; 0 disables")
	fs.IntVar(&cfg.LLMMaxTokens, "llm.maxTokens", 0, "Maximum completion tokens; 0 leaves it to the server")
	fs.StringVar(&cfg.SerpAPIKey, "serpapi.key", "", "SerpAPI key (env SERPAPI_KEY)")
	fs.StringVar(&cfg.SerpAPIURL, "serpapi.url", "", "SerpAPI endpoint override")
	fs.StringVar(&cfg.KeywordsFile, "keywords.file", "", "JSON file of term suggestions used when no SerpAPI key is set")
	fs.IntVar(&cfg.KeywordConcurrency, "keywords.concurrency", 0, fmt.Sprintf("Concurrent keyword lookups (default %d)", app.DefaultKeywordConcurrency))
	fs.IntVar(&cfg.MaxSuggestions, "keywords.max", 0, fmt.Sprintf("Suggestions kept per term (default %d)", app.DefaultMaxSuggestions))
	fs.IntVar(&cfg.HeadingCount, "headings", 0, fmt.Sprintf("Number of headings to request (default %d)", app.DefaultCount))
	fs.IntVar(&cfg.TermCount, "terms", 0, fmt.Sprintf("Number of search terms to request (default %d)", app.DefaultCount))
	fs.IntVar(&cfg.MaxInputTokens, "max.inputTokens", 0, fmt.Sprintf("Cap on article tokens sent for summarization; negative disables (default %d)", app.DefaultMaxInputTokens))
	fs.DurationVar(&cfg.FetchTimeout, "fetch.timeout", 0, fmt.Sprintf("Page fetch timeout (default %s)", app.DefaultFetchTimeout))
	fs.IntVar(&cfg.FetchMaxAttempts, "fetch.attempts", 0, "Page fetch attempts including the first; retries only 5xx and timeouts (default 1)")
	fs.StringVar(&cfg.UserAgent, "fetch.ua", "", "User-Agent for page and keyword requests")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Fetch and extract only; no model or keyword calls")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	fs.StringVar(&cfg.LogFile, "log.file", "", "Also write JSON logs to this rotating file")
	fs.StringVar(&cfg.CacheDir, "cache.dir", "", "Cache directory path (default "+app.DefaultCacheDir+")")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}
	if showVersion {
		return cfg, true, nil
	}
	if cfg.URL == "" && fs.NArg() > 0 {
		cfg.URL = strings.TrimSpace(fs.Arg(0))
	}

	app.ApplyEnvToConfig(&cfg)
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, false, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	applyDefaults(&cfg)
	return cfg, false, app.ValidateConfig(cfg)
}

func applyDefaults(cfg *app.Config) {
	if cfg.OutputPath == "" {
		cfg.OutputPath = app.DefaultOutputPath
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = app.DefaultCacheDir
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = app.DefaultUserAgent
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = app.DefaultFetchTimeout
	}
}

// newLogger writes human-readable logs to console and, when logFile is set,
// JSON lines to a size-rotated file. Every entry carries runID.
func newLogger(console io.Writer, logFile string, runID string) (zerolog.Logger, func() error) {
	w := console
	closeFn := func() error { return nil }
	if strings.TrimSpace(logFile) != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = zerolog.MultiLevelWriter(console, rotator)
		closeFn = rotator.Close
	}
	logger := zerolog.New(w).With().Timestamp().Str("run_id", runID).Logger()
	return logger, closeFn
}

func run(ctx context.Context, cfg app.Config, stdout io.Writer) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.SetOutput(stdout)
	return a.Run(ctx)
}

// exitCode maps run errors to the process status: 2 when the page could not
// be fetched, 1 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrFetchFailed):
		return 2
	default:
		return 1
	}
}
