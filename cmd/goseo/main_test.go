package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/goseo/internal/app"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SEO_URL", "LLM_BASE_URL", "LLM_MODEL", "LLM_API_KEY", "OPENAI_API_KEY",
		"SERPAPI_KEY", "SERPAPI_URL", "KEYWORDS_FILE", "OUTPUT", "CACHE_DIR", "CACHE_MAX_AGE",
		"CACHE_CLEAR", "VERBOSE", "DRY_RUN", "LOG_FILE", "GOSEO_CONFIG"} {
		t.Setenv(k, "")
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{fmt.Errorf("%w: 404", app.ErrFetchFailed), 2},
		{errors.New("write result: disk full"), 1},
		{context.Canceled, 1},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v)=%d, want %d", tc.err, got, tc.want)
		}
	}
}

// Flags beat the environment, which beats the config file; defaults fill the
// rest.
func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "goseo.yaml")
	doc := "url: https://file.example/\nllm:\n  model: file-model\n  base: http://file-llm/v1\nserpapi:\n  key: file-serp\n"
	if err := os.WriteFile(cfgPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("SERPAPI_KEY", "env-serp")

	cfg, showVersion, err := loadConfig([]string{"-config", cfgPath, "-serpapi.key", "flag-serp", "https://arg.example/post"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if showVersion {
		t.Fatalf("unexpected version request")
	}
	if cfg.URL != "https://arg.example/post" {
		t.Fatalf("URL=%q, want positional argument", cfg.URL)
	}
	if cfg.SerpAPIKey != "flag-serp" {
		t.Fatalf("SerpAPIKey=%q, want flag value", cfg.SerpAPIKey)
	}
	if cfg.LLMModel != "env-model" {
		t.Fatalf("LLMModel=%q, want env value", cfg.LLMModel)
	}
	if cfg.LLMBaseURL != "http://file-llm/v1" {
		t.Fatalf("LLMBaseURL=%q, want file value", cfg.LLMBaseURL)
	}
	if cfg.OutputPath != app.DefaultOutputPath || cfg.CacheDir != app.DefaultCacheDir {
		t.Fatalf("defaults not applied: output=%q cache=%q", cfg.OutputPath, cfg.CacheDir)
	}
}

func TestLoadConfig_RejectsMissingURL(t *testing.T) {
	clearEnv(t)
	if _, _, err := loadConfig([]string{"-llm.model", "m"}); err == nil || !strings.Contains(err.Error(), "url is required") {
		t.Fatalf("expected missing url error, got %v", err)
	}
}

func TestLoadConfig_Version(t *testing.T) {
	clearEnv(t)
	_, showVersion, err := loadConfig([]string{"-version"})
	if err != nil || !showVersion {
		t.Fatalf("showVersion=%v err=%v", showVersion, err)
	}
}

func TestNewLogger_WritesRunIDToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "goseo.log")
	var console bytes.Buffer
	logger, closeLog := newLogger(&console, logPath, "run-123")
	logger.Info().Str("stage", "extract").Msg("hello")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"run_id":"run-123"`) || !strings.Contains(string(b), `"stage":"extract"`) {
		t.Fatalf("log file missing fields: %s", b)
	}
	if !strings.Contains(console.String(), "hello") {
		t.Fatalf("console missing entry: %s", console.String())
	}
}

// Smoke test: a dry run fetches and extracts without contacting a model.
func TestRun_DryRun(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title>Dry</title></head><body><p>Some text.</p></body></html>"))
	}))
	defer page.Close()

	dir := t.TempDir()
	cfg := app.Config{
		URL:        page.URL,
		OutputPath: filepath.Join(dir, "out.json"),
		CacheDir:   filepath.Join(dir, "cache"),
		DryRun:     true,
	}
	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, &stdout); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Dry run for "+page.URL) {
		t.Fatalf("unexpected stdout: %s", stdout.String())
	}
	if _, err := os.Stat(cfg.OutputPath); !os.IsNotExist(err) {
		t.Fatalf("dry run must not write output")
	}
}

// An unreachable page surfaces as an extraction abort with exit status 2.
func TestRun_UnreachablePageExitsTwo(t *testing.T) {
	page := httptest.NewServer(http.NotFoundHandler())
	defer page.Close()
	cfg := app.Config{URL: page.URL, OutputPath: filepath.Join(t.TempDir(), "out.json"), DryRun: true}
	err := run(context.Background(), cfg, &bytes.Buffer{})
	if got := exitCode(err); got != 2 {
		t.Fatalf("exitCode=%d for err=%v, want 2", got, err)
	}
}
