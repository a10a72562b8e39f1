package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry represents a cached chat response.
type cacheEntry struct {
	expiry   time.Time
	response Response
}

// responseCache provides thread-safe caching of chat responses keyed by conversation.
// Expired entries are dropped lazily on access and on every set.
type responseCache struct {
	entries map[string]cacheEntry
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
}

// newResponseCache creates a new cache with the specified TTL. A negative TTL disables
// caching.
func newResponseCache(ttl time.Duration) *responseCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// cacheKey hashes the provider and every message into a stable key.
func cacheKey(provider string, messages []Message) string {
	h := sha256.New()
	h.Write([]byte(provider))
	for _, m := range messages {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// get retrieves a response if it exists and hasn't expired.
func (c *responseCache) get(key string) (Response, bool) {
	if c.ttl < 0 {
		return Response{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiry) {
		return Response{}, false
	}
	return entry.response, true
}

// set stores a response and evicts expired entries.
func (c *responseCache) set(key string, response Response) {
	if c.ttl < 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{response: response, expiry: now.Add(c.ttl)}
}

// size returns the number of entries in the cache.
func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
