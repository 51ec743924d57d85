package redis

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// memoryCache is the in-process layer. Entries are shared pointers and must
// be treated as read-only by callers.
type memoryCache struct {
	mu         sync.RWMutex
	entries    map[uuid.UUID]memoryEntry
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock
}

type memoryEntry struct {
	analysis  *domain.Analysis
	expiresAt time.Time
}

func newMemoryCache(clock clockwork.Clock, ttl time.Duration, maxEntries int) *memoryCache {
	return &memoryCache{
		entries:    make(map[uuid.UUID]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
	}
}

func (c *memoryCache) get(id uuid.UUID) (*domain.Analysis, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok || !c.clock.Now().Before(e.expiresAt) {
		return nil, false
	}
	return e.analysis, true
}

// set is a no-op when the layer is disabled with a non-positive TTL.
func (c *memoryCache) set(id uuid.UUID, a *domain.Analysis) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[id] = memoryEntry{analysis: a, expiresAt: c.clock.Now().Add(c.ttl)}
}

func (c *memoryCache) evictOneLocked() {
	var (
		victim uuid.UUID
		oldest time.Time
		found  bool
	)
	for id, e := range c.entries {
		if !found || e.expiresAt.Before(oldest) {
			victim, oldest, found = id, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

func (c *memoryCache) invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

func (c *memoryCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *memoryCache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}
