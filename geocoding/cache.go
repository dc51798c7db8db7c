package geocoding

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CacheStore persists the whole cache document at once. The production
// backend is a JSON file; tests swap in an in-memory one.
type CacheStore interface {
	Load() (map[string]*Point, error)
	Save(entries map[string]*Point) error
}

// FileStore keeps the cache as a single JSON document on disk, rewritten
// in full after every update.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (map[string]*Point, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*Point{}, nil
		}
		return nil, fmt.Errorf("read geocode cache: %w", err)
	}
	entries := map[string]*Point{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse geocode cache %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileStore) Save(entries map[string]*Point) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode geocode cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write geocode cache: %w", err)
	}
	return nil
}

// MemoryStore is a CacheStore that never touches disk.
type MemoryStore struct {
	entries map[string]*Point
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]*Point{}}
}

func (s *MemoryStore) Load() (map[string]*Point, error) {
	out := make(map[string]*Point, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Save(entries map[string]*Point) error {
	out := make(map[string]*Point, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	s.entries = out
	return nil
}

// Cache front-ends a CacheStore with serialized access and normalized
// keys. Negative results are first-class entries: a present key holding a
// nil point means "looked up before, not found".
type Cache struct {
	mu      sync.Mutex
	store   CacheStore
	entries map[string]*Point
}

func NewCache(store CacheStore) *Cache {
	return &Cache{store: store, entries: map[string]*Point{}}
}

// Load reads the persisted document. Called once at startup; if it fails
// the cache starts empty and the next update rewrites the document.
func (c *Cache) Load() error {
	entries, err := c.store.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// Get reports the cached outcome for a term. The second return value
// distinguishes "never looked up" from a cached not-found.
func (c *Cache) Get(term string) (*Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[cacheKey(term)]
	if !ok || p == nil {
		return nil, ok
	}
	out := *p
	return &out, true
}

// Put records the outcome for a term (nil marks not-found) and rewrites
// the whole persisted document.
func (c *Cache) Put(term string, p *Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(term)] = p
	return c.store.Save(c.entries)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
