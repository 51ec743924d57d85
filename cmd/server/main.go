package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/reviewpulse/internal/adapter/httpserver"
	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/adapter/postgres"
	"github.com/pscheid92/reviewpulse/internal/adapter/redis"
	"github.com/pscheid92/reviewpulse/internal/app"
	"github.com/pscheid92/reviewpulse/internal/platform/config"
	"github.com/pscheid92/reviewpulse/internal/platform/logging"
	"github.com/pscheid92/reviewpulse/internal/platform/retry"
	"github.com/pscheid92/reviewpulse/internal/platform/version"
	"github.com/pscheid92/reviewpulse/internal/sentiment"
)

const (
	shutdownTimeout       = 10 * time.Second
	migrationTimeout      = time.Minute
	cacheEvictionInterval = time.Minute
	redisBreakerFailures  = 5
	redisBreakerDelay     = 10 * time.Second
)

type metricSet struct {
	registry *prometheus.Registry
	http     *metrics.HTTPMetrics
	cache    *metrics.CacheMetrics
	analysis *metrics.AnalysisMetrics
	backend  *metrics.BackendMetrics
}

func setupMetrics() *metricSet {
	reg := metrics.NewRegistry()
	return &metricSet{
		registry: reg,
		http:     metrics.NewHTTPMetrics(reg),
		cache:    metrics.NewCacheMetrics(reg),
		analysis: metrics.NewAnalysisMetrics(reg),
		backend:  metrics.NewBackendMetrics(reg),
	}
}

func runGracefulShutdown(srv *httpserver.Server, appSvc *app.Service, stopBackground func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		appSvc.Stop()
		stopBackground()

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func startupPolicy(dependency string) retry.Policy {
	p := retry.Startup
	p.OnRetry = func(attempt int, err error, wait time.Duration) {
		slog.Warn("Dependency not ready, retrying", "dependency", dependency, "attempt", attempt, "wait", wait, "error", err)
	}
	return p
}

func setupDB(ctx context.Context, cfg *config.Config, m *metricSet) *pgxpool.Pool {
	tracer := postgres.NewQueryTracer(m.backend)
	pool, err := retry.Do(ctx, startupPolicy("postgres"), func(ctx context.Context) (*pgxpool.Pool, error) {
		return postgres.Connect(ctx, cfg.DatabaseURL, tracer)
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()
	if err := postgres.RunMigrations(migrateCtx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config, m *metricSet) *goredis.Client {
	breaker := redis.NewBreakerHook(redisBreakerFailures, redisBreakerDelay, m.backend.BreakerChanged)
	client, err := retry.Do(ctx, startupPolicy("redis"), func(ctx context.Context) (*goredis.Client, error) {
		return redis.NewClient(ctx, cfg.RedisURL, redis.NewMetricsHook(m.backend), breaker)
	})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := setupMetrics()

	pool := setupDB(ctx, cfg, m)
	defer pool.Close()

	redisClient := setupRedis(ctx, cfg, m)
	defer func() { _ = redisClient.Close() }()

	breakerSettings := postgres.DefaultBreakerSettings
	breakerSettings.OnStateChange = m.backend.BreakerChanged
	analyses := postgres.NewBreakerRepo(postgres.NewAnalysisRepo(pool), breakerSettings)

	cache := redis.NewAnalysisCache(redisClient, redis.CacheOptions{
		TTL:       cfg.CacheTTL,
		MemoryTTL: cfg.MemoryCacheTTL,
		Clock:     clock,
		Metrics:   m.cache,
	})
	stopEviction := cache.StartEvictionTimer(cacheEvictionInterval)

	subscriberCtx, stopSubscriber := context.WithCancel(ctx)
	go redis.NewInvalidationSubscriber(redisClient, cache).Start(subscriberCtx)

	analyzer := sentiment.NewAnalyzer(sentiment.DefaultLexicon(), sentiment.WithTopWords(cfg.TopWords))
	appSvc := app.NewService(analyzer, analyses, cache, redis.NewPublisher(redisClient), m.analysis, clock, app.Options{
		MaxRecords:    cfg.MaxRecords,
		Retention:     cfg.AnalysisRetention,
		SweepInterval: cfg.RetentionSweepInterval,
	})

	healthChecks := []httpserver.HealthCheck{
		{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		{Name: "postgres", Check: pool.Ping},
	}
	srv := httpserver.NewServer(cfg, appSvc, m.http, metrics.Handler(m.registry), healthChecks)

	done := runGracefulShutdown(srv, appSvc, func() {
		stopEviction()
		stopSubscriber()
	})

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
