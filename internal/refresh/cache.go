package refresh

import (
	"sync"

	"github.com/kitebird-capital/terminal/internal/domain"
)

// Cache owns the published snapshot. There is exactly one writer (the
// refresher) and any number of concurrent readers; a snapshot is built in
// full before Publish and never mutated afterwards, so readers always see
// a complete cycle, never a half-written mix of two cycles.
type Cache struct {
	mu   sync.RWMutex
	snap *domain.Snapshot
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the most recently published snapshot. ok is false before the
// first cycle completes; callers should render an "empty" state rather
// than treating that as an error.
func (c *Cache) Get() (snap *domain.Snapshot, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, c.snap != nil
}

// Publish atomically replaces the visible snapshot. The caller must not
// modify snap after publishing.
func (c *Cache) Publish(snap *domain.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}
