package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLLMCache_SaveGet(t *testing.T) {
	c := &LLMCache{Dir: t.TempDir()}
	key := KeyFrom("model", "prompt")
	if err := c.Save(context.Background(), key, "model", `["a","b"]`); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if got != `["a","b"]` {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestLLMCache_MissAndCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := &LLMCache{Dir: dir}
	if _, ok, err := c.Get(context.Background(), KeyFrom("m", "absent")); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
	key := KeyFrom("m", "corrupt")
	if err := os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, _ := c.Get(context.Background(), key); ok {
		t.Fatalf("corrupt entry must be a miss")
	}
}

func TestKeyFrom_DependsOnModel(t *testing.T) {
	if KeyFrom("a", "p") == KeyFrom("b", "p") {
		t.Fatalf("keys for different models must differ")
	}
}

func TestLLMCache_StrictPerms(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "llm")
	c := &LLMCache{Dir: dir, StrictPerms: true}
	key := KeyFrom("m", "p")
	if err := c.Save(context.Background(), key, "m", "x"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, key+".json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode()&0o777 != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode()&0o777)
	}
}

func TestLLMCache_PurgeOlderThan(t *testing.T) {
	dir := t.TempDir()
	c := &LLMCache{Dir: dir}
	oldKey, newKey := KeyFrom("m", "old"), KeyFrom("m", "new")
	_ = c.Save(context.Background(), oldKey, "m", "old")
	_ = c.Save(context.Background(), newKey, "m", "new")
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, oldKey+".json"), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	removed, err := c.PurgeOlderThan(24 * time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok, _ := c.Get(context.Background(), newKey); !ok {
		t.Fatalf("recent entry should survive")
	}
}
