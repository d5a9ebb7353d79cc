package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheHitRequiresMatchingHash(t *testing.T) {
	cache := NewMemoryCache()
	ix := &Index{}

	_, ok := cache.Get("doc-1", ContentHash("v1"))
	assert.False(t, ok)

	cache.Put("doc-1", ContentHash("v1"), ix)

	got, ok := cache.Get("doc-1", ContentHash("v1"))
	require.True(t, ok)
	assert.Same(t, ix, got)

	// Same document, different extracted text: stale entry must not serve.
	_, ok = cache.Get("doc-1", ContentHash("v2"))
	assert.False(t, ok)
}

func TestMemoryCacheInvalidate(t *testing.T) {
	cache := NewMemoryCache()
	cache.Put("doc-1", ContentHash("v1"), &Index{})

	cache.Invalidate("doc-1")

	_, ok := cache.Get("doc-1", ContentHash("v1"))
	assert.False(t, ok)
}

func TestMemoryCachePutReplaces(t *testing.T) {
	cache := NewMemoryCache()
	first := &Index{}
	second := &Index{}

	cache.Put("doc-1", ContentHash("v1"), first)
	cache.Put("doc-1", ContentHash("v2"), second)

	_, ok := cache.Get("doc-1", ContentHash("v1"))
	assert.False(t, ok)

	got, ok := cache.Get("doc-1", ContentHash("v2"))
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestContentHashStable(t *testing.T) {
	assert.Equal(t, ContentHash("hello"), ContentHash("hello"))
	assert.NotEqual(t, ContentHash("hello"), ContentHash("hello "))
	assert.Len(t, ContentHash(""), 64)
}
