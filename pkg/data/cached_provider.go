package data

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string][]types.Observation
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]types.Observation),
	}
}

// Get returns a copy of the cached observations for key
func (c *MemoryCache) Get(key string) ([]types.Observation, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	return cloneObservations(data), true
}

// Set stores a copy of data under key
func (c *MemoryCache) Set(key string, data []types.Observation) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = cloneObservations(data)
}

// Delete drops the entry for key
func (c *MemoryCache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.cache, key)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string][]types.Observation)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

func cloneObservations(data []types.Observation) []types.Observation {
	out := make([]types.Observation, len(data))
	copy(out, data)
	return out
}

// CachedProvider wraps another DataProvider and reloads a file only when it
// changes on disk. Entries are keyed by path, modification time and size.
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
	quiet    bool

	mu      sync.Mutex
	current map[string]string // source -> key of its live entry
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache())
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		current:  make(map[string]string),
	}
}

// SetQuiet disables load progress logging
func (p *CachedProvider) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData serves source from the cache while the file is unchanged
func (p *CachedProvider) LoadData(source string) ([]types.Observation, error) {
	key := cacheKey(source)
	if cachedData, exists := p.cache.Get(key); exists {
		return cachedData, nil
	}

	p.logf("🔄 Loading observations from %s", filepath.Base(source))
	data, err := p.provider.LoadData(source)
	if err != nil {
		p.logf("❌ Failed to load observations from %s: %v", filepath.Base(source), err)
		return nil, err
	}

	p.mu.Lock()
	if stale, ok := p.current[source]; ok && stale != key {
		p.cache.Delete(stale)
		p.logf("♻️ %s changed on disk, replacing cached observations", filepath.Base(source))
	}
	p.current[source] = key
	p.mu.Unlock()

	p.cache.Set(key, data)

	p.logf("✅ Loaded and cached %d observations from %s", len(data), filepath.Base(source))
	return data, nil
}

// cacheKey identifies one version of a source; sources that cannot be
// stat'ed are keyed by name alone
func cacheKey(source string) string {
	info, err := os.Stat(source)
	if err != nil {
		return source
	}
	return fmt.Sprintf("%s@%d:%d", source, info.ModTime().UnixNano(), info.Size())
}

// ValidateData validates data using the underlying provider
func (p *CachedProvider) ValidateData(data []types.Observation) error {
	return p.provider.ValidateData(data)
}

// GetCache returns the underlying cache for external management
func (p *CachedProvider) GetCache() DataCache {
	return p.cache
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.mu.Lock()
	p.current = make(map[string]string)
	p.mu.Unlock()

	p.cache.Clear()
}

func (p *CachedProvider) logf(format string, args ...interface{}) {
	if !p.quiet {
		log.Printf(format, args...)
	}
}
