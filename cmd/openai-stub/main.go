// Command openai-stub serves canned answers for every external call goseo
// makes, so the pipeline can be exercised end to end without network access.
// Point -llm.base at http://<addr>/v1 and -serpapi.url at
// http://<addr>/search.json.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt := ""
		if len(req.Messages) > 0 {
			prompt = strings.TrimSpace(req.Messages[len(req.Messages)-1].Content)
		}
		content, ok := answer(prompt)
		if !ok {
			http.Error(w, "unexpected prompt", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"id":     "stub",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if r.URL.Query().Get("engine") != "google_autocomplete" || q == "" {
			http.Error(w, "unsupported query", http.StatusBadRequest)
			return
		}
		suggestions := make([]map[string]any, 0, 6)
		for _, suffix := range []string{"", " guide", " examples", " 2024", " vs alternatives", " tutorial"} {
			suggestions = append(suggestions, map[string]any{"value": q + suffix, "relevance": 600})
		}
		writeJSON(w, map[string]any{"suggestions": suggestions})
	})
	return mux
}

// answer recognizes the pipeline prompt by its opening instructions.
func answer(prompt string) (string, bool) {
	switch {
	case strings.HasPrefix(prompt, "Summarize the following article"):
		return "The article explains the topic. It covers the background. It lists key points. It gives examples. It ends with advice.", true
	case strings.Contains(prompt, "SEO-optimized headings** that"):
		return "```json\n" + list("Stub Heading", 10) + "\n```", true
	case strings.Contains(prompt, "SEO-optimized search terms"):
		return list("stub search term", 10), true
	case strings.HasPrefix(prompt, "Improve the **"):
		return list("Stub Optimized Heading", 10), true
	}
	return "", false
}

func list(label string, n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("%s %d", label, i+1)
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
