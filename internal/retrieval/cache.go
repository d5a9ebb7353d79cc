package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// IndexCache memoizes built indexes per document. Entries are keyed by
// document id and guarded by a content hash so stale extractions never
// serve retrieval results.
type IndexCache interface {
	Get(documentID, contentHash string) (*Index, bool)
	Put(documentID, contentHash string, ix *Index)
	Invalidate(documentID string)
}

// ContentHash returns the cache guard hash for a document's extracted text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	hash  string
	index *Index
}

// MemoryCache is a process-local IndexCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewMemoryCache constructs an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached index when the content hash still matches.
func (c *MemoryCache) Get(documentID, contentHash string) (*Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[documentID]
	if !ok || entry.hash != contentHash {
		return nil, false
	}
	return entry.index, true
}

// Put stores the index for a document, replacing any prior entry.
func (c *MemoryCache) Put(documentID, contentHash string, ix *Index) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[documentID] = cacheEntry{hash: contentHash, index: ix}
}

// Invalidate drops the cached index for a document.
func (c *MemoryCache) Invalidate(documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, documentID)
}

var _ IndexCache = (*MemoryCache)(nil)
