package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/use-agent/philosophy/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	response  *models.TraceResponse
	createdAt time.Time
}

// Cache is a simple in-memory cache for trace responses.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	now        func() time.Time

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a new Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict entries older
// than 1 hour.
func New(maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the source, destination and limit.
func Key(source, destination string, limit int) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte("|"))
	h.Write([]byte(destination))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.Itoa(limit)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached response if it exists and is younger than maxAge.
// maxAge is in milliseconds. If maxAge <= 0, no cache lookup is performed.
// Returns the response and whether it was a cache hit.
func (c *Cache) Get(key string, maxAgeMs int) (*models.TraceResponse, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if c.now().Sub(e.createdAt) > maxAge {
		return nil, false
	}

	return e.response, true
}

// Set stores a response in the cache. If the cache is at capacity,
// a random entry is evicted to make room.
func (c *Cache) Set(key string, resp *models.TraceResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		response:  resp,
		createdAt: c.now(),
	}
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stop ends the background cleanup goroutine.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictBefore(c.now().Add(-1 * time.Hour))
		}
	}
}

func (c *Cache) evictBefore(cutoff time.Time) {
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}
