// Package cache keeps fetched pages and model completions on disk so that
// repeated runs over the same URL are cheap and reproducible.
package cache

import (
	"errors"
	"os"
	"strings"
	"time"
)

// ClearDir empties dir, recreating it if needed.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// listDir returns the entries of dir, treating a missing directory as empty.
func listDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return entries, err
}

func expired(t time.Time, maxAge time.Duration, now time.Time) bool {
	return now.Sub(t) > maxAge
}
