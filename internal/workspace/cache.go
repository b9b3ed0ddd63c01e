package workspace

import (
	"sync"
	"time"
)

// DefaultStaleAfter is the staleness window for the cached note list.
const DefaultStaleAfter = 30 * time.Second

// Cache holds the last fetched note list with an explicit staleness
// window. It is injected into the Workspace rather than living as
// ambient global state, so invalidation points are visible in the code
// that owns them.
type Cache struct {
	mu         sync.RWMutex
	notes      []StoredNote
	fetchedAt  time.Time
	staleAfter time.Duration
	now        func() time.Time
}

// NewCache creates a cache with the given staleness window; zero or
// negative means DefaultStaleAfter.
func NewCache(staleAfter time.Duration) *Cache {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Cache{staleAfter: staleAfter, now: time.Now}
}

// Get returns the cached list and whether it is still fresh. The returned
// slice is a copy; callers may mutate it freely.
func (c *Cache) Get() ([]StoredNote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) > c.staleAfter {
		return nil, false
	}
	out := make([]StoredNote, len(c.notes))
	copy(out, c.notes)
	return out, true
}

// Set replaces the cached list and resets the staleness clock.
func (c *Cache) Set(notes []StoredNote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = make([]StoredNote, len(notes))
	copy(c.notes, notes)
	c.fetchedAt = c.now()
}

// Invalidate drops the cached list. Called after every successful
// create/update/delete so the next Load refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = nil
	c.fetchedAt = time.Time{}
}
