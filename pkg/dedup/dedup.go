package dedup

import (
	"sync"
)

const DefaultWindowSize = 1000

// Cache remembers message IDs already processed within a bounded window so
// the same message is not re-evaluated across polling cycles. When the
// window overflows the whole set is cleared rather than evicted entry by
// entry, so callers must tolerate occasional duplicate reprocessing.
type Cache struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size int
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Cache{
		seen: make(map[string]struct{}, size),
		size: size,
	}
}

// Seen reports whether the ID is inside the current window.
func (c *Cache) Seen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[id]
	return ok
}

// Add records the IDs, clearing the window first if it would overflow.
func (c *Cache) Add(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.seen)+len(ids) > c.size {
		c.seen = make(map[string]struct{}, c.size)
	}
	for _, id := range ids {
		c.seen[id] = struct{}{}
	}
}

// Len returns the number of IDs in the current window.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Cleanup wipes the window. Invoked by the periodic cleanup scheduler,
// which may run concurrently with cycle processing.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[string]struct{}, c.size)
}
