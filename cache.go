package sessions

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// sessionCache is a fixed-capacity, least-recently-used map from cache key to
// session handle. Removing an entry for any reason (capacity eviction,
// explicit delete, or clear) fires the teardown callback so the owner can
// close the handle and report the eviction. Capacity is enforced before an
// insert completes, so the cache never holds more than its configured size.
type sessionCache struct {
	entries *lru.Cache[string, Handle]
}

func newSessionCache(capacity int, onRemove func(key string, handle Handle)) (*sessionCache, error) {
	entries, err := lru.NewWithEvict(capacity, onRemove)
	if err != nil {
		return nil, err
	}
	return &sessionCache{entries: entries}, nil
}

// Get returns the handle for key and marks it as recently used.
func (c *sessionCache) Get(key string) (Handle, bool) {
	return c.entries.Get(key)
}

// Peek returns the handle for key without affecting recency. Used by the
// read-only inspection paths.
func (c *sessionCache) Peek(key string) (Handle, bool) {
	return c.entries.Peek(key)
}

// Put inserts or replaces the handle for key, evicting the least-recently
// used entry first when at capacity.
func (c *sessionCache) Put(key string, handle Handle) {
	c.entries.Add(key, handle)
}

// Delete removes the entry for key, reporting whether one was present.
func (c *sessionCache) Delete(key string) bool {
	return c.entries.Remove(key)
}

// Clear removes every entry and returns how many were removed.
func (c *sessionCache) Clear() int {
	n := c.entries.Len()
	c.entries.Purge()
	return n
}

// Len returns the number of cached entries.
func (c *sessionCache) Len() int {
	return c.entries.Len()
}

// Keys returns the cached keys from oldest to newest.
func (c *sessionCache) Keys() []string {
	return c.entries.Keys()
}
