// Package cache is a file-backed response cache for collaborator calls.
// Search, extraction and ranking responses are keyed by an MD5 of their
// identifier and stored as JSON under a per-kind subdirectory, so repeated
// discovery runs against the same sources stay cheap during development.
// Expiry is lazy: an expired or corrupt entry is removed at read time.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Canonical cache kinds used by the collaborator adapters.
const (
	KindSearch  = "search"
	KindExtract = "extract"
	KindRank    = "rank"
)

// DefaultTTL matches the discovery cadence: editorial sources rarely change
// within a day.
const DefaultTTL = 24 * time.Hour

// Cache stores JSON envelopes under dir/<kind>/<md5>.json.
type Cache struct {
	dir      string
	ttl      time.Duration
	disabled bool
	clock    func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the default 24 hour expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// Disabled turns the cache into a pass-through: every Get misses and Put is
// a no-op.
func Disabled() Option {
	return func(c *Cache) {
		c.disabled = true
	}
}

// WithClock injects the time source, for expiry tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates a cache rooted at dir. The directory is created lazily on the
// first Put.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{
		dir:   dir,
		ttl:   DefaultTTL,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope wraps cached content with the metadata expiry needs. Identifier
// is stored in clear for debugging; the filename only carries its hash.
type envelope struct {
	Timestamp  int64           `json:"timestamp"`
	Identifier string          `json:"identifier"`
	Content    json.RawMessage `json:"content"`
}

// Key hashes an identifier (URL, query, prompt input) into a filename-safe
// cache key.
func Key(identifier string) string {
	sum := md5.Sum([]byte(identifier))
	return hex.EncodeToString(sum[:])
}

// Get loads a cached value into out. A miss, an expired entry, a corrupt
// file, or content that no longer decodes all report found=false; expired
// and corrupt files are removed on the way.
func (c *Cache) Get(kind, identifier string, out any) bool {
	if c.disabled {
		return false
	}

	path := c.path(kind, identifier)
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		_ = os.Remove(path)
		return false
	}

	age := c.clock().Unix() - env.Timestamp
	if age < 0 || time.Duration(age)*time.Second > c.ttl {
		_ = os.Remove(path)
		return false
	}

	if err := json.Unmarshal(env.Content, out); err != nil {
		// The content schema moved under the entry. Treat as corrupt.
		_ = os.Remove(path)
		return false
	}
	return true
}

// Put stores a value. Write failures are returned but callers treat the
// cache as best-effort: a failed Put never fails the collaborator call.
func (c *Cache) Put(kind, identifier string, content any) error {
	if c.disabled {
		return nil
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal cache content: %w", err)
	}
	data, err := json.MarshalIndent(envelope{
		Timestamp:  c.clock().Unix(),
		Identifier: identifier,
		Content:    raw,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache envelope: %w", err)
	}

	subdir := filepath.Join(c.dir, kind)
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		return fmt.Errorf("ensure cache directory: %w", err)
	}

	// Atomic within the kind directory so a crash never leaves a torn entry.
	tmp, err := os.CreateTemp(subdir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache temp file: %w", err)
	}

	dest := c.path(kind, identifier)
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("replace cache entry: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename cache entry into place: %w", err)
	}
	return nil
}

// ClearResult reports what Clear removed.
type ClearResult struct {
	FilesRemoved int `json:"files_removed"`
	Errors       int `json:"errors"`
}

// Clear removes every cached entry across all kinds.
func (c *Cache) Clear() ClearResult {
	var result ClearResult

	kinds, err := os.ReadDir(c.dir)
	if err != nil {
		return result
	}
	for _, kind := range kinds {
		if !kind.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(c.dir, kind.Name()))
		if err != nil {
			result.Errors++
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
				continue
			}
			if err := os.Remove(filepath.Join(c.dir, kind.Name(), entry.Name())); err != nil {
				result.Errors++
			} else {
				result.FilesRemoved++
			}
		}
	}
	return result
}

// KindStats describes one kind subdirectory.
type KindStats struct {
	Files  int     `json:"files"`
	SizeKB float64 `json:"size_kb"`
}

// Stats summarizes the cache contents for the `cache stats` command.
type Stats struct {
	Enabled     bool                 `json:"enabled"`
	TTLHours    float64              `json:"ttl_hours"`
	TotalFiles  int                  `json:"total_files"`
	TotalSizeKB float64              `json:"total_size_kb"`
	Kinds       map[string]KindStats `json:"kinds"`
}

// Stats walks the cache directory. A missing directory is an empty cache,
// not an error.
func (c *Cache) Stats() Stats {
	stats := Stats{
		Enabled:  !c.disabled,
		TTLHours: c.ttl.Hours(),
		Kinds:    map[string]KindStats{},
	}

	kinds, err := os.ReadDir(c.dir)
	if err != nil {
		return stats
	}
	for _, kind := range kinds {
		if !kind.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(c.dir, kind.Name()))
		if err != nil {
			continue
		}
		var ks KindStats
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			ks.Files++
			ks.SizeKB += float64(info.Size()) / 1024
		}
		stats.Kinds[kind.Name()] = ks
		stats.TotalFiles += ks.Files
		stats.TotalSizeKB += ks.SizeKB
	}
	return stats
}

func (c *Cache) path(kind, identifier string) string {
	return filepath.Join(c.dir, kind, Key(identifier)+".json")
}
