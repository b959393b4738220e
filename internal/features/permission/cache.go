package permission

import "sync"

// Cache holds effective-permission snapshots keyed by user id. It is a plain
// injected dependency, not a package global; every mutation path that touches
// roles or overrides calls Invalidate (or InvalidateAll for bulk role edits).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Effective
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Effective)}
}

func (c *Cache) Get(userID string) (*Effective, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	eff, ok := c.entries[userID]
	return eff, ok
}

func (c *Cache) Set(userID string, eff *Effective) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = eff
}

func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// InvalidateAll drops every snapshot. Used when a role changes, since any
// number of users may reference it.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Effective)
}
