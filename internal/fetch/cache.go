package fetch

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Key identifies one cached page rendering.
type Key struct {
	URL         string
	MonthOffset int
}

// Entry is a cached page rendering. Entries never expire; a run-level force
// flag is the only invalidation mechanism.
type Entry struct {
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache stores page renderings by key. Implementations must tolerate
// overwrites of an existing key.
type Cache interface {
	Get(key Key) (*Entry, bool, error)
	Put(key Key, entry *Entry) error
}

// DirCache persists entries as one JSON file per key under a directory.
type DirCache struct {
	dir string
}

// NewDirCache creates the cache directory if needed. A leading ~/ expands
// to the user's home directory.
func NewDirCache(dir string) (*DirCache, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &DirCache{dir: dir}, nil
}

func (c *DirCache) Get(key Key) (*Entry, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("parsing cache entry: %w", err)
	}
	return &entry, true, nil
}

func (c *DirCache) Put(key Key, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (c *DirCache) path(key Key) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_m%d.json", urlToFilename(key.URL), key.MonthOffset))
}

// urlToFilename converts a URL to a safe filename. The readable part is
// lossy (sanitized and truncated), so a hash of the full URL is appended;
// two distinct URLs never share a file.
func urlToFilename(url string) string {
	name := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	mapper := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}
	name = strings.Map(mapper, name)
	if len(name) > 100 {
		name = name[:100]
	}

	h := fnv.New32a()
	h.Write([]byte(url))
	return fmt.Sprintf("%s-%08x", name, h.Sum32())
}

// MemCache is an in-memory Cache for tests and run-scoped use.
type MemCache struct {
	mu      sync.Mutex
	entries map[Key]*Entry
}

func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[Key]*Entry)}
}

func (c *MemCache) Get(key Key) (*Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := *entry
	return &cp, true, nil
}

func (c *MemCache) Put(key Key, entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *entry
	c.entries[key] = &cp
	return nil
}
