package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LLMCache stores completion texts keyed by a digest of model and prompt.
// Completions are requested with temperature 0, so a hit replays the same
// answer the model would most likely give again.
type LLMCache struct {
	Dir string
	// StrictPerms, when true, enforces 0700 on cache directories and 0600 on
	// files.
	StrictPerms bool
}

// completionEntry is the on-disk shape of a cached completion.
type completionEntry struct {
	Model   string    `json:"model"`
	Content string    `json:"content"`
	SavedAt time.Time `json:"saved_at"`
}

func (c *LLMCache) ensureDir() error {
	if c == nil || strings.TrimSpace(c.Dir) == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

// KeyFrom builds a cache key from model and prompt.
func KeyFrom(model string, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *LLMCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached completion for key. A missing or unreadable entry is
// reported as a miss, not an error.
func (c *LLMCache) Get(_ context.Context, key string) (string, bool, error) {
	if err := c.ensureDir(); err != nil {
		return "", false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return "", false, nil
	}
	var e completionEntry
	if err := json.Unmarshal(b, &e); err != nil || strings.TrimSpace(e.Content) == "" {
		return "", false, nil
	}
	// Touch mtime so age-based purges keep recently used entries.
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return e.Content, true, nil
}

// Save writes a completion to the cache.
func (c *LLMCache) Save(_ context.Context, key string, model string, content string) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	data, err := json.Marshal(completionEntry{Model: model, Content: content, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	return os.WriteFile(c.pathFor(key), data, mode)
}

// PurgeOlderThan removes completions not used for more than maxAge. Get
// refreshes an entry's mtime, so recently replayed answers survive. It
// returns the number of entries removed.
func (c *LLMCache) PurgeOlderThan(maxAge time.Duration) (int, error) {
	if maxAge <= 0 || c == nil || strings.TrimSpace(c.Dir) == "" {
		return 0, nil
	}
	entries, err := listDir(c.Dir)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	removed := 0
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil || !expired(info.ModTime(), maxAge, now) {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, de.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
