package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/domain"
)

const defaultMemoryEntries = 256

type CacheOptions struct {
	// TTL applies to the Redis layer.
	TTL time.Duration
	// MemoryTTL applies to the in-process layer and bounds how stale a
	// deleted analysis can be on an instance that missed the invalidation.
	MemoryTTL time.Duration
	// MemoryEntries caps the in-process layer; the entry closest to expiry
	// is dropped first. Zero means 256.
	MemoryEntries int
	Clock         clockwork.Clock
	Metrics       *metrics.CacheMetrics
}

// AnalysisCache is a two-layer read-through cache for full analyses. It never
// reports errors on reads: any Redis failure is logged and treated as a miss.
type AnalysisCache struct {
	rdb     goredis.Cmdable
	ttl     time.Duration
	mem     *memoryCache
	clock   clockwork.Clock
	metrics *metrics.CacheMetrics
}

var _ domain.AnalysisCache = (*AnalysisCache)(nil)

func NewAnalysisCache(rdb goredis.Cmdable, opts CacheOptions) *AnalysisCache {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	entries := opts.MemoryEntries
	if entries <= 0 {
		entries = defaultMemoryEntries
	}

	return &AnalysisCache{
		rdb:     rdb,
		ttl:     opts.TTL,
		mem:     newMemoryCache(clock, opts.MemoryTTL, entries),
		clock:   clock,
		metrics: opts.Metrics,
	}
}

func (c *AnalysisCache) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, bool) {
	if a, ok := c.mem.get(id); ok {
		c.hit(metrics.LayerMemory)
		return a, true
	}
	c.miss(metrics.LayerMemory)

	a, ok := c.getRemote(ctx, id)
	if !ok {
		c.miss(metrics.LayerRedis)
		return nil, false
	}
	c.hit(metrics.LayerRedis)
	c.mem.set(id, a)
	c.gauge()
	return a, true
}

// Set stores a in both layers. A failed Redis write is logged, not returned.
func (c *AnalysisCache) Set(ctx context.Context, a *domain.Analysis) {
	c.mem.set(a.ID, a)
	c.gauge()

	encoded, err := json.Marshal(a)
	if err != nil {
		slog.WarnContext(ctx, "Failed to marshal analysis for Redis cache", "analysis_id", a.ID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(a.ID), encoded, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Failed to populate Redis analysis cache", "analysis_id", a.ID, "error", err)
	}
}

// Invalidate drops id from both layers.
func (c *AnalysisCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	c.DropLocal(id)

	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate analysis cache: %w", err)
	}
	return nil
}

// DropLocal drops id from the in-process layer only.
func (c *AnalysisCache) DropLocal(id uuid.UUID) {
	c.mem.invalidate(id)
	c.gauge()
	if c.metrics != nil {
		c.metrics.Invalidations.Inc()
	}
}

// StartEvictionTimer periodically removes expired in-process entries. The
// returned function stops it.
func (c *AnalysisCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.mem.evictExpired(); evicted > 0 {
					if c.metrics != nil {
						c.metrics.Evictions.Add(float64(evicted))
					}
					c.gauge()
					slog.Debug("Evicted expired analysis cache entries", "count", evicted, "remaining", c.mem.size())
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

func (c *AnalysisCache) getRemote(ctx context.Context, id uuid.UUID) (*domain.Analysis, bool) {
	data, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.WarnContext(ctx, "Redis analysis cache GET failed", "analysis_id", id, "error", err)
		}
		return nil, false
	}

	var a domain.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		slog.WarnContext(ctx, "Failed to unmarshal cached analysis", "analysis_id", id, "error", err)
		return nil, false
	}
	return &a, true
}

func (c *AnalysisCache) hit(layer string) {
	if c.metrics != nil {
		c.metrics.Hits.WithLabelValues(layer).Inc()
	}
}

func (c *AnalysisCache) miss(layer string) {
	if c.metrics != nil {
		c.metrics.Misses.WithLabelValues(layer).Inc()
	}
}

func (c *AnalysisCache) gauge() {
	if c.metrics != nil {
		c.metrics.Entries.Set(float64(c.mem.size()))
	}
}

func cacheKey(id uuid.UUID) string {
	return "analysis_cache:" + id.String()
}
