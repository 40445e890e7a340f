// Package caching keeps extraction results on disk so batch reruns over the
// same transcript skip messages they have already seen.
package caching

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	"github.com/dtnitsch/llm-chat-extractor/models"
	"github.com/dtnitsch/llm-chat-extractor/pkg/extractor"
)

// Cache is a directory of JSON results keyed by message content and the
// extraction config in effect. A zero ttl never expires entries.
type Cache struct {
	dir       string
	ttl       time.Duration
	namespace string
}

// NewCache creates dir if needed. Results cached under a different cfg are
// never returned.
func NewCache(dir string, ttl time.Duration, cfg models.ExtractConfig) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	fingerprint, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint config: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, namespace: common.ContentHash(fingerprint)}, nil
}

func (c *Cache) path(text string) string {
	key := common.ContentHash([]byte(c.namespace + "\x00" + text))
	return filepath.Join(c.dir, key+".json")
}

func (c *Cache) expired(modTime time.Time) bool {
	return c.ttl > 0 && time.Since(modTime) > c.ttl
}

// Get returns the cached result for text. Missing, expired and unreadable
// entries are all misses.
func (c *Cache) Get(text string) (*extractor.Result, bool) {
	filePath := c.path(text)

	info, err := os.Stat(filePath)
	if err != nil || c.expired(info.ModTime()) {
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}

	var res extractor.Result
	if err := json.Unmarshal(data, &res); err != nil || !res.Content.Kind.Valid() {
		return nil, false
	}
	return &res, true
}

// Put stores res as the result for text.
func (c *Cache) Put(text string, res extractor.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	// Write then rename so concurrent readers never see a partial file.
	filePath := c.path(text)
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (c *Cache) Prune() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil || !c.expired(info.ModTime()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
