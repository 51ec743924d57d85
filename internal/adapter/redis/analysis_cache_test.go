package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/domain"
)

// unreachableClient fails every command quickly with a refused connection.
func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestAnalysisCache_MemoryHitWithoutRedis(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCacheMetrics(reg)
	cache := NewAnalysisCache(unreachableClient(t), CacheOptions{
		TTL:       time.Hour,
		MemoryTTL: time.Minute,
		Clock:     clockwork.NewFakeClock(),
		Metrics:   m,
	})
	ctx := context.Background()
	a := &domain.Analysis{ID: uuid.New(), Name: "sample"}

	cache.Set(ctx, a)

	got, ok := cache.Get(ctx, a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Hits.WithLabelValues(metrics.LayerMemory)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Entries), 1e-9)
}

func TestAnalysisCache_RedisFailureIsMiss(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCacheMetrics(reg)
	cache := NewAnalysisCache(unreachableClient(t), CacheOptions{TTL: time.Hour, MemoryTTL: time.Minute, Metrics: m})

	got, ok := cache.Get(context.Background(), uuid.New())

	assert.False(t, ok)
	assert.Nil(t, got)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Misses.WithLabelValues(metrics.LayerMemory)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Misses.WithLabelValues(metrics.LayerRedis)), 1e-9)
}

func TestAnalysisCache_InvalidateDropsLocalEvenIfRedisFails(t *testing.T) {
	cache := NewAnalysisCache(unreachableClient(t), CacheOptions{TTL: time.Hour, MemoryTTL: time.Minute})
	ctx := context.Background()
	a := &domain.Analysis{ID: uuid.New()}
	cache.Set(ctx, a)

	err := cache.Invalidate(ctx, a.ID)

	assert.Error(t, err)
	_, hit := cache.mem.get(a.ID)
	assert.False(t, hit)
}

func TestAnalysisCache_NilMetricsIsAllowed(t *testing.T) {
	cache := NewAnalysisCache(unreachableClient(t), CacheOptions{MemoryTTL: time.Minute})
	a := &domain.Analysis{ID: uuid.New()}

	assert.NotPanics(t, func() {
		cache.Set(context.Background(), a)
		cache.DropLocal(a.ID)
		_, _ = cache.Get(context.Background(), a.ID)
	})
}

func TestAnalysisCache_EvictionTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := prometheus.NewRegistry()
	m := metrics.NewCacheMetrics(reg)
	cache := NewAnalysisCache(unreachableClient(t), CacheOptions{MemoryTTL: time.Second, Clock: clock, Metrics: m})
	a := &domain.Analysis{ID: uuid.New()}
	cache.mem.set(a.ID, a)

	stop := cache.StartEvictionTimer(5 * time.Second)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(5 * time.Second)

	assert.Eventually(t, func() bool { return cache.mem.size() == 0 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return testutil.ToFloat64(m.Evictions) == 1 }, time.Second, 10*time.Millisecond)
}

func TestInvalidationSubscriber_Handle(t *testing.T) {
	cache := NewAnalysisCache(unreachableClient(t), CacheOptions{MemoryTTL: time.Minute})
	sub := NewInvalidationSubscriber(nil, cache)
	a := &domain.Analysis{ID: uuid.New()}
	cache.mem.set(a.ID, a)

	sub.handle(a.ID.String())

	_, hit := cache.mem.get(a.ID)
	assert.False(t, hit)
}

func TestInvalidationSubscriber_MalformedPayloadIgnored(t *testing.T) {
	cache := NewAnalysisCache(unreachableClient(t), CacheOptions{MemoryTTL: time.Minute})
	sub := NewInvalidationSubscriber(nil, cache)
	a := &domain.Analysis{ID: uuid.New()}
	cache.mem.set(a.ID, a)

	sub.handle("")
	sub.handle("not-a-uuid")

	_, hit := cache.mem.get(a.ID)
	assert.True(t, hit)
}

func TestBreakerHook_OpensAfterFailures(t *testing.T) {
	var (
		mu     sync.Mutex
		states []string
	)
	hook := NewBreakerHook(2, time.Minute, func(component, state string) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, component+":"+state)
	})
	ctx := context.Background()

	calls := 0
	failing := hook.ProcessHook(func(context.Context, goredis.Cmder) error {
		calls++
		return errors.New("connection reset")
	})

	for range 2 {
		assert.Error(t, failing(ctx, goredis.NewStringCmd(ctx, "get", "k")))
	}
	assert.Equal(t, circuitbreaker.OpenState, hook.State())

	cmd := goredis.NewStringCmd(ctx, "get", "k")
	err := failing(ctx, cmd)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.ErrorIs(t, cmd.Err(), circuitbreaker.ErrOpen)
	assert.Equal(t, 2, calls)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) == 1 && states[0] == "redis:open"
	}, time.Second, 10*time.Millisecond)
}

func TestBreakerHook_NilReplyIsSuccess(t *testing.T) {
	hook := NewBreakerHook(1, time.Minute, nil)
	ctx := context.Background()

	process := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return goredis.Nil })
	for range 3 {
		assert.ErrorIs(t, process(ctx, goredis.NewStringCmd(ctx, "get", "k")), goredis.Nil)
	}

	assert.Equal(t, circuitbreaker.ClosedState, hook.State())
}

func TestBreakerHook_PipelineRejectedWhenOpen(t *testing.T) {
	hook := NewBreakerHook(1, time.Minute, nil)
	ctx := context.Background()

	pipeline := hook.ProcessPipelineHook(func(context.Context, []goredis.Cmder) error {
		return errors.New("broken pipe")
	})
	require.Error(t, pipeline(ctx, nil))

	err := pipeline(ctx, nil)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestMetricsHook_CountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBackendMetrics(reg)
	hook := NewMetricsHook(m)
	ctx := context.Background()

	ok := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return nil })
	miss := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return goredis.Nil })
	fail := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return errors.New("boom") })

	require.NoError(t, ok(ctx, goredis.NewStringCmd(ctx, "get", "k")))
	_ = miss(ctx, goredis.NewStringCmd(ctx, "get", "k"))
	_ = fail(ctx, goredis.NewStringCmd(ctx, "get", "k"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.RedisOps.WithLabelValues("get", "success")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RedisOps.WithLabelValues("get", "error")), 1e-9)
}
