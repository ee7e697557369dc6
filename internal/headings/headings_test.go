package headings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type fakeLLM struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func TestGenerate_ParsesFencedList(t *testing.T) {
	f := &fakeLLM{reply: "```json\n[\"a\",\"b\"]\n```"}
	got := (&Generator{LLM: f}).Generate(context.Background(), "summary text")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected headings %#v", got)
	}
	if !strings.Contains(f.lastPrompt, "summary text") || !strings.Contains(f.lastPrompt, `"Heading 10"`) {
		t.Fatalf("unexpected prompt:\n%s", f.lastPrompt)
	}
}

func TestGenerate_MalformedYieldsFallback(t *testing.T) {
	got := (&Generator{LLM: &fakeLLM{reply: "not json"}}).Generate(context.Background(), "s")
	assertFallback(t, got, "Fallback SEO Heading %d")
}

func TestGenerate_ErrorYieldsFallback(t *testing.T) {
	got := (&Generator{LLM: &fakeLLM{err: errors.New("down")}}).Generate(context.Background(), "s")
	assertFallback(t, got, "Fallback SEO Heading %d")
}

func TestRefine_EmbedsHeadingsAndKeywords(t *testing.T) {
	f := &fakeLLM{reply: `["Better A", "Better B"]`}
	r := &Refiner{LLM: f}
	kw := map[string][]string{"term b": {"y"}, "term a": {"x", "z"}}
	got := r.Refine(context.Background(), []string{"A", "B"}, kw)
	if !reflect.DeepEqual(got, []string{"Better A", "Better B"}) {
		t.Fatalf("unexpected refined headings %#v", got)
	}
	wantHeadings := "[\n  \"A\",\n  \"B\"\n]"
	if !strings.Contains(f.lastPrompt, wantHeadings) {
		t.Fatalf("expected indented headings JSON in prompt:\n%s", f.lastPrompt)
	}
	// Keys are sorted so the prompt, and therefore the cache key, is stable.
	if strings.Index(f.lastPrompt, `"term a"`) > strings.Index(f.lastPrompt, `"term b"`) {
		t.Fatalf("expected sorted keyword keys:\n%s", f.lastPrompt)
	}
}

func TestRefine_NilInputsRenderEmptyJSON(t *testing.T) {
	prompt, err := BuildRefinePrompt(nil, nil, 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(prompt, "[]") || !strings.Contains(prompt, "{}") {
		t.Fatalf("expected empty JSON containers:\n%s", prompt)
	}
}

func TestRefine_Fallbacks(t *testing.T) {
	for _, f := range []*fakeLLM{{reply: "```json\n{\"not\": \"a list\"}\n```"}, {err: errors.New("down")}} {
		got := (&Refiner{LLM: f}).Refine(context.Background(), []string{"A"}, nil)
		assertFallback(t, got, "Fallback Optimized Heading %d")
	}
}

func assertFallback(t *testing.T, got []string, pattern string) {
	t.Helper()
	if len(got) != 10 {
		t.Fatalf("expected 10 fallback items, got %d", len(got))
	}
	for i, h := range got {
		if want := fmt.Sprintf(pattern, i+1); h != want {
			t.Fatalf("item %d = %q, want %q", i, h, want)
		}
	}
}
