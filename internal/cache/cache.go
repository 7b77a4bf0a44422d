package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is a cached spreadsheet range with metadata.
type Entry struct {
	Range     string     `json:"range"`
	Rows      [][]string `json:"rows"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Cache provides disk-based caching for spreadsheet ranges.
type Cache struct {
	dir string
	ttl time.Duration
	mu  sync.RWMutex
	now func() time.Time
}

// New creates a new disk-based cache.
func New(cacheDir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &Cache{
		dir: cacheDir,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Get retrieves the cached rows for a range if they exist and aren't expired.
func (c *Cache) Get(rng string) ([][]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.filePath(rng))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if c.now().Sub(entry.FetchedAt) > c.ttl {
		return nil, false
	}

	return entry.Rows, true
}

// Set stores the rows of a range in the cache.
func (c *Cache) Set(rng string, rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		Range:     rng,
		Rows:      rows,
		FetchedAt: c.now(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.filePath(rng), data, 0644)
}

// Invalidate removes a specific range from the cache.
func (c *Cache) Invalidate(rng string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.filePath(rng)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Cache) filePath(rng string) string {
	// Ranges contain '!' and ':', which are not filesystem-safe everywhere.
	safe := make([]rune, 0, len(rng))
	for _, r := range rng {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			safe = append(safe, r)
		} else {
			safe = append(safe, '_')
		}
	}
	return filepath.Join(c.dir, string(safe)+".json")
}
