package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache layers used as label values.
const (
	LayerMemory = "memory"
	LayerRedis  = "redis"
)

type CacheMetrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Invalidations prometheus.Counter
	Evictions     prometheus.Counter
	Entries       prometheus.Gauge
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis_cache",
			Name:      "hits_total",
			Help:      "Total number of analysis cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis_cache",
			Name:      "misses_total",
			Help:      "Total number of analysis cache misses, by layer.",
		}, []string{"layer"}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis_cache",
			Name:      "invalidations_total",
			Help:      "Total number of analysis cache invalidations.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis_cache",
			Name:      "evictions_total",
			Help:      "Total number of expired in-memory entries evicted.",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis_cache",
			Name:      "memory_entries",
			Help:      "Number of analyses held in the in-memory cache.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Invalidations, m.Evictions, m.Entries)
	return m
}
