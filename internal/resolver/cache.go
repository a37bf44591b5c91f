package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"poolscout/internal/model"
)

// cacheEntry is one persisted resolution with its storage time.
type cacheEntry struct {
	Token    model.TokenRef `json:"token"`
	StoredAt time.Time      `json:"stored_at"`
}

// FileCache keeps previously-resolved tokens in memory and mirrors them
// to a JSON file so resolutions survive restarts. Entries expire after
// the configured TTL; a zero TTL keeps them forever.
type FileCache struct {
	path string
	ttl  time.Duration

	mu   sync.RWMutex
	data map[string]cacheEntry
}

func NewFileCache(path string, ttl time.Duration) (*FileCache, error) {
	cache := &FileCache{
		path: path,
		ttl:  ttl,
		data: make(map[string]cacheEntry),
	}
	if path == "" {
		return cache, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return nil, fmt.Errorf("read token cache: %w", err)
	}
	if err := json.Unmarshal(raw, &cache.data); err != nil {
		return nil, fmt.Errorf("parse token cache: %w", err)
	}
	return cache, nil
}

func (c *FileCache) Get(symbol string, chain model.ChainID) (model.TokenRef, bool) {
	c.mu.RLock()
	entry, ok := c.data[cacheKey(symbol, chain)]
	c.mu.RUnlock()
	if !ok {
		return model.TokenRef{}, false
	}
	if c.ttl > 0 && time.Since(entry.StoredAt) > c.ttl {
		return model.TokenRef{}, false
	}
	return entry.Token, true
}

// Put stores a resolution and persists the cache file atomically.
func (c *FileCache) Put(token model.TokenRef) error {
	c.mu.Lock()
	c.data[cacheKey(token.Symbol, token.Chain)] = cacheEntry{
		Token:    token,
		StoredAt: time.Now().UTC(),
	}
	snapshot, err := json.Marshal(c.data)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal token cache: %w", err)
	}

	if c.path == "" {
		return nil
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, snapshot, 0o644); err != nil {
		return fmt.Errorf("write cache tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename cache: %w", err)
	}
	return nil
}

func cacheKey(symbol string, chain model.ChainID) string {
	return string(chain) + ":" + strings.ToUpper(symbol)
}

// CacheLookup is the resolver strategy reading the cache.
type CacheLookup struct {
	cache *FileCache
}

func NewCacheLookup(cache *FileCache) *CacheLookup {
	return &CacheLookup{cache: cache}
}

func (s *CacheLookup) Name() string { return "cache" }

func (s *CacheLookup) Resolve(_ context.Context, symbol string, chain model.ChainID) (model.TokenRef, bool, error) {
	if s.cache == nil {
		return model.TokenRef{}, false, nil
	}
	token, ok := s.cache.Get(symbol, chain)
	if !ok {
		return model.TokenRef{}, false, nil
	}
	token.Source = model.SourceCache
	return token, true, nil
}
