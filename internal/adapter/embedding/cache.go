package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache memoizes query embeddings. Identical query texts map to the
// same vector for a given model, so re-embedding them is wasted
// latency and spend. Rankings themselves are never cached.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	vector    []float32
	timestamp time.Time
}

func NewCache(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:16])
}

func (c *Cache) Get(text string) ([]float32, bool) {
	key := cacheKey(text)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.vector, true
}

func (c *Cache) Put(text string, vector []float32) {
	key := cacheKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{vector: vector, timestamp: time.Now()}
		c.moveToEnd(key)
		return
	}

	// Evict the oldest entry when full
	if len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &cacheEntry{vector: vector, timestamp: time.Now()}
	c.order = append(c.order, key)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}
