package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFile_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "goseo.yaml")
	yamlDoc := `url: https://example.com/article
output: out.json
llm:
  model: file-model
  timeout: 30s
serpapi:
  key: serp-from-file
keywords:
  concurrency: 2
cache:
  dir: /tmp/seo-cache
  maxAge: 48h
`
	if err := os.WriteFile(yamlPath, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	fc, err := LoadConfigFile(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if fc.URL != "https://example.com/article" || fc.LLM.Model != "file-model" || fc.SerpAPI.Key != "serp-from-file" {
		t.Fatalf("unexpected yaml config: %+v", fc)
	}
	if fc.LLM.Timeout != 30*time.Second || fc.Cache.MaxAge != 48*time.Hour || fc.Keywords.Concurrency != 2 {
		t.Fatalf("durations or ints not decoded: %+v", fc)
	}

	jsonPath := filepath.Join(dir, "goseo.json")
	if err := os.WriteFile(jsonPath, []byte(`{"url":"https://example.org/","llm":{"model":"json-model"}}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	fc, err = LoadConfigFile(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if fc.URL != "https://example.org/" || fc.LLM.Model != "json-model" {
		t.Fatalf("unexpected json config: %+v", fc)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("url: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

// File values fill unset fields and fields still at their flag default, but
// never replace explicit values.
func TestApplyFileConfig_Precedence(t *testing.T) {
	var fc FileConfig
	fc.URL = "https://file.example/"
	fc.Output = "file.json"
	fc.LLM.Model = "file-model"
	fc.Keywords.Concurrency = 8
	fc.Cache.Dir = "/var/cache/goseo"
	fc.Cache.Clear = true

	cfg := Config{
		URL:                "https://flag.example/",
		OutputPath:         DefaultOutputPath,
		KeywordConcurrency: DefaultKeywordConcurrency,
		CacheDir:           ".custom-cache",
	}
	ApplyFileConfig(&cfg, fc)

	if cfg.URL != "https://flag.example/" {
		t.Fatalf("explicit URL replaced: %q", cfg.URL)
	}
	if cfg.OutputPath != "file.json" {
		t.Fatalf("default output not replaced: %q", cfg.OutputPath)
	}
	if cfg.LLMModel != "file-model" || cfg.KeywordConcurrency != 8 || !cfg.CacheClear {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.CacheDir != ".custom-cache" {
		t.Fatalf("explicit cache dir replaced: %q", cfg.CacheDir)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := Config{URL: "https://example.com/a", OutputPath: "out.json", LLMModel: "m"}
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing url", func(c *Config) { c.URL = " " }, "url is required"},
		{"relative url", func(c *Config) { c.URL = "example.com/a" }, "absolute http(s)"},
		{"ftp url", func(c *Config) { c.URL = "ftp://example.com/a" }, "absolute http(s)"},
		{"missing output", func(c *Config) { c.OutputPath = "" }, "output path"},
		{"missing model", func(c *Config) { c.LLMModel = "" }, "llm.model"},
		{"dry run without model", func(c *Config) { c.LLMModel = ""; c.DryRun = true }, ""},
		{"negative count", func(c *Config) { c.HeadingCount = -1 }, "negative limits"},
		{"negative timeout", func(c *Config) { c.LLMTimeout = -time.Second }, "negative durations"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := ValidateConfig(cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err=%v, want containing %q", err, tc.wantErr)
			}
		})
	}
}
