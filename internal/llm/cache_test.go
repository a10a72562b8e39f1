package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		cache := newResponseCache(5 * time.Minute)

		_, found := cache.get("missing")
		assert.False(t, found)

		resp := Response{Content: "hello", Provider: ProviderOpenAI, Confidence: 0.95}
		cache.set("k", resp)

		got, found := cache.get("k")
		assert.True(t, found)
		assert.Equal(t, resp, got)
		assert.Equal(t, 1, cache.size())
	})

	t.Run("expiry", func(t *testing.T) {
		cache := newResponseCache(time.Minute)
		clock := time.Now()
		cache.now = func() time.Time { return clock }

		cache.set("old", Response{Content: "old"})
		clock = clock.Add(2 * time.Minute)

		_, found := cache.get("old")
		assert.False(t, found)

		cache.set("new", Response{Content: "new"})
		assert.Equal(t, 1, cache.size(), "expired entries are evicted on set")
	})

	t.Run("negative ttl disables", func(t *testing.T) {
		cache := newResponseCache(-1)
		cache.set("k", Response{Content: "x"})
		_, found := cache.get("k")
		assert.False(t, found)
		assert.Zero(t, cache.size())
	})
}

func TestCacheKey(t *testing.T) {
	a := []Message{{Role: RoleUser, Content: "hi"}}
	b := []Message{{Role: RoleSystem, Content: "hi"}}

	assert.Equal(t, cacheKey(ProviderOpenAI, a), cacheKey(ProviderOpenAI, a))
	assert.NotEqual(t, cacheKey(ProviderOpenAI, a), cacheKey(ProviderOpenAI, b))
	assert.NotEqual(t, cacheKey(ProviderOpenAI, a), cacheKey(ProviderGemini, a))
}
