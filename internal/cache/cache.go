package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dshills/commitgenie/internal/review"
)

// Entry is one cached review.
type Entry struct {
	Key       string        `json:"key"`
	Model     string        `json:"model"`
	Result    review.Result `json:"result"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Cache provides file-based caching of review results.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
	}, nil
}

// Get returns the cached review for key. The boolean is false on a miss.
func (c *Cache) Get(key string) (review.Result, bool) {
	if !c.enabled {
		return review.Result{}, false
	}
	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return review.Result{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return review.Result{}, false
	}
	if c.expired(entry) {
		_ = os.Remove(path)
		return review.Result{}, false
	}
	return entry.Result, true
}

// Put stores a review result under key. The entry is written to a
// temporary file and renamed so concurrent readers never see a partial file.
func (c *Cache) Put(key, model string, res review.Result) error {
	if !c.enabled {
		return nil
	}
	data, err := json.Marshal(Entry{
		Key:       key,
		Model:     model,
		Result:    res,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	var removed int
	err := c.walk(func(path string, _ fs.FileInfo, _ *Entry) {
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// Prune removes expired and unreadable entries and returns how many were
// removed.
func (c *Cache) Prune() (int, error) {
	var removed int
	err := c.walk(func(path string, _ fs.FileInfo, e *Entry) {
		if e != nil && !c.expired(*e) {
			return
		}
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// Stats describes the cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Enabled    bool   `json:"enabled"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir, Enabled: c.enabled}
	err := c.walk(func(_ string, info fs.FileInfo, e *Entry) {
		stats.Entries++
		stats.TotalBytes += info.Size()
		if e != nil && c.expired(*e) {
			stats.Expired++
		}
	})
	return stats, err
}

// walk calls fn for every entry file. e is nil when the file cannot be
// decoded.
func (c *Cache) walk(fn func(path string, info fs.FileInfo, e *Entry)) error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.dir, de.Name())
		var entry *Entry
		if data, err := os.ReadFile(path); err == nil {
			var e Entry
			if json.Unmarshal(data, &e) == nil {
				entry = &e
			}
		}
		fn(path, info, entry)
	}
	return nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Key derives the cache key for a review request. Every input that changes
// the reviewer's answer is part of the key.
func Key(model string, mode review.Mode, language, customPrompt, diff string) string {
	material := strings.Join([]string{model, string(mode), language, customPrompt, diff}, "\x00")
	return fmt.Sprintf("%x", sha256.Sum256([]byte(material)))
}

func (c *Cache) expired(e Entry) bool {
	return c.ttl > 0 && time.Since(e.CreatedAt) > c.ttl
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// DefaultDir returns the OS-appropriate cache directory.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "commitgenie"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "commitgenie"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "commitgenie", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "commitgenie", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "commitgenie"), nil
	}
}
