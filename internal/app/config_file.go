package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	URL       string `yaml:"url" json:"url"`
	Output    string `yaml:"output" json:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF"`

	LLM struct {
		BaseURL    string        `yaml:"base" json:"base"`
		Model      string        `yaml:"model" json:"model"`
		APIKey     string        `yaml:"key" json:"key"`
		MaxRetries int           `yaml:"maxRetries" json:"maxRetries"`
		Timeout    time.Duration `yaml:"timeout" json:"timeout"`
		MaxTokens  int           `yaml:"maxTokens" json:"maxTokens"`
	} `yaml:"llm" json:"llm"`

	SerpAPI struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
	} `yaml:"serpapi" json:"serpapi"`

	Keywords struct {
		File           string `yaml:"file" json:"file"`
		Concurrency    int    `yaml:"concurrency" json:"concurrency"`
		MaxSuggestions int    `yaml:"maxSuggestions" json:"maxSuggestions"`
	} `yaml:"keywords" json:"keywords"`

	Headings       int `yaml:"headings" json:"headings"`
	Terms          int `yaml:"terms" json:"terms"`
	MaxInputTokens int `yaml:"maxInputTokens" json:"maxInputTokens"`

	Fetch struct {
		Timeout  time.Duration `yaml:"timeout" json:"timeout"`
		Attempts int           `yaml:"attempts" json:"attempts"`
		UA       string        `yaml:"ua" json:"ua"`
	} `yaml:"fetch" json:"fetch"`

	DryRun  bool   `yaml:"dryRun" json:"dryRun"`
	Verbose bool   `yaml:"verbose" json:"verbose"`
	LogFile string `yaml:"logFile" json:"logFile"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for any fields that are
// still unset or at their flag default. Flags and env have already been
// applied, so the file only supplies defaults.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	str := func(dst *string, def string, v string) {
		if (*dst == "" || *dst == def) && v != "" {
			*dst = v
		}
	}
	num := func(dst *int, def int, v int) {
		if (*dst == 0 || *dst == def) && v > 0 {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, def time.Duration, v time.Duration) {
		if (*dst == 0 || *dst == def) && v > 0 {
			*dst = v
		}
	}
	enable := func(dst *bool, v bool) {
		if !*dst && v {
			*dst = true
		}
	}

	str(&cfg.URL, "", fc.URL)
	str(&cfg.OutputPath, DefaultOutputPath, fc.Output)
	str(&cfg.OutputPDFPath, "", fc.OutputPDF)

	str(&cfg.LLMBaseURL, "", fc.LLM.BaseURL)
	str(&cfg.LLMModel, "", fc.LLM.Model)
	str(&cfg.LLMAPIKey, "", fc.LLM.APIKey)
	num(&cfg.LLMMaxRetries, DefaultLLMMaxRetries, fc.LLM.MaxRetries)
	dur(&cfg.LLMTimeout, 0, fc.LLM.Timeout)
	num(&cfg.LLMMaxTokens, 0, fc.LLM.MaxTokens)

	str(&cfg.SerpAPIURL, "", fc.SerpAPI.URL)
	str(&cfg.SerpAPIKey, "", fc.SerpAPI.Key)
	str(&cfg.KeywordsFile, "", fc.Keywords.File)
	num(&cfg.KeywordConcurrency, DefaultKeywordConcurrency, fc.Keywords.Concurrency)
	num(&cfg.MaxSuggestions, DefaultMaxSuggestions, fc.Keywords.MaxSuggestions)

	num(&cfg.HeadingCount, DefaultCount, fc.Headings)
	num(&cfg.TermCount, DefaultCount, fc.Terms)
	num(&cfg.MaxInputTokens, DefaultMaxInputTokens, fc.MaxInputTokens)

	dur(&cfg.FetchTimeout, DefaultFetchTimeout, fc.Fetch.Timeout)
	num(&cfg.FetchMaxAttempts, 0, fc.Fetch.Attempts)
	str(&cfg.UserAgent, DefaultUserAgent, fc.Fetch.UA)

	enable(&cfg.DryRun, fc.DryRun)
	enable(&cfg.Verbose, fc.Verbose)
	str(&cfg.LogFile, "", fc.LogFile)

	str(&cfg.CacheDir, DefaultCacheDir, fc.Cache.Dir)
	dur(&cfg.CacheMaxAge, 0, fc.Cache.MaxAge)
	enable(&cfg.CacheClear, fc.Cache.Clear)
	enable(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)
}

// ValidateConfig performs minimal validation of required settings. In dry-run
// mode the model may be omitted.
func ValidateConfig(cfg Config) error {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		return errors.New("config: url is required (or set SEO_URL)")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: url must be an absolute http(s) URL, got %q", raw)
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	if !cfg.DryRun && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if cfg.LLMMaxRetries < 0 || cfg.LLMMaxTokens < 0 || cfg.KeywordConcurrency < 0 ||
		cfg.MaxSuggestions < 0 || cfg.HeadingCount < 0 || cfg.TermCount < 0 || cfg.FetchMaxAttempts < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.LLMTimeout < 0 || cfg.FetchTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	return nil
}
