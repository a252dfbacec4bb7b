package utils

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type cacheEntry struct {
	raw       []byte
	expiresAt time.Time
}

// DocumentCache caches raw guild documents so reaction bursts do not hit
// Postgres for every event. Writers call Set after every successful persist,
// so entries only go stale if another process writes the table; the TTL
// bounds that window.
type DocumentCache struct {
	data          map[string]cacheEntry
	mutex         sync.RWMutex
	ttl           time.Duration
	cleanupTicker *time.Ticker
	done          chan bool
}

// NewDocumentCache creates a cache and starts its cleanup routine.
func NewDocumentCache(ttl time.Duration) *DocumentCache {
	c := &DocumentCache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
		done: make(chan bool),
	}
	c.cleanupTicker = time.NewTicker(5 * time.Minute)
	go c.cleanupRoutine()
	return c
}

// Close stops the cleanup routine.
func (c *DocumentCache) Close() {
	if c.cleanupTicker != nil {
		c.cleanupTicker.Stop()
		c.done <- true
	}
}

func cacheKey(guildID, namespace string) string {
	return guildID + ":" + namespace
}

// Get retrieves a document from cache.
func (c *DocumentCache) Get(guildID, namespace string) ([]byte, bool) {
	key := cacheKey(guildID, namespace)

	c.mutex.RLock()
	entry, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.Delete(guildID, namespace)
		return nil, false
	}

	// Return a copy to prevent external modifications.
	raw := append([]byte(nil), entry.raw...)
	return raw, true
}

// Set stores a document in cache.
func (c *DocumentCache) Set(guildID, namespace string, raw []byte) {
	entry := cacheEntry{
		raw:       append([]byte(nil), raw...),
		expiresAt: time.Now().Add(c.ttl),
	}

	c.mutex.Lock()
	c.data[cacheKey(guildID, namespace)] = entry
	c.mutex.Unlock()
}

// Delete removes a document from cache.
func (c *DocumentCache) Delete(guildID, namespace string) {
	c.mutex.Lock()
	delete(c.data, cacheKey(guildID, namespace))
	c.mutex.Unlock()
}

// Size returns the number of entries in cache.
func (c *DocumentCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// cleanupRoutine removes expired entries periodically.
func (c *DocumentCache) cleanupRoutine() {
	for {
		select {
		case <-c.cleanupTicker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

// cleanup removes expired entries.
func (c *DocumentCache) cleanup() {
	now := time.Now()
	expiredKeys := make([]string, 0)

	c.mutex.RLock()
	for key, entry := range c.data {
		if now.After(entry.expiresAt) {
			expiredKeys = append(expiredKeys, key)
		}
	}
	c.mutex.RUnlock()

	if len(expiredKeys) == 0 {
		return
	}

	c.mutex.Lock()
	for _, key := range expiredKeys {
		delete(c.data, key)
	}
	c.mutex.Unlock()

	log.Debug().Int("expired", len(expiredKeys)).Int("size", c.Size()).Msg("Cleaned up expired document cache entries")
}
