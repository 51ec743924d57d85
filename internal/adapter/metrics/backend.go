package metrics

import "github.com/prometheus/client_golang/prometheus"

// Breaker state gauge values.
const (
	breakerClosed   = 0
	breakerHalfOpen = 1
	breakerOpen     = 2
)

// BackendMetrics covers the two stateful dependencies, Redis and Postgres,
// plus the circuit breakers guarding them.
type BackendMetrics struct {
	RedisOps         *prometheus.CounterVec
	RedisOpDuration  *prometheus.HistogramVec
	RedisDialErrors  prometheus.Counter
	DBQueryDuration  *prometheus.HistogramVec
	DBErrors         *prometheus.CounterVec
	BreakerState     *prometheus.GaugeVec
	BreakerTransited *prometheus.CounterVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	m := &BackendMetrics{
		RedisOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total Redis commands, by command and status.",
		}, []string{"operation", "status"}),
		RedisOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Redis command latency in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		RedisDialErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "dial_errors_total",
			Help:      "Total failed Redis connection attempts.",
		}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Postgres query latency in seconds, by statement verb.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		DBErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Total failed Postgres queries, by statement verb.",
		}, []string{"operation"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"component"}),
		BreakerTransited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state_changes_total",
			Help:      "Circuit breaker transitions, by component and new state.",
		}, []string{"component", "state"}),
	}

	reg.MustRegister(m.RedisOps, m.RedisOpDuration, m.RedisDialErrors,
		m.DBQueryDuration, m.DBErrors, m.BreakerState, m.BreakerTransited)
	return m
}

// BreakerChanged records a transition. state is "closed", "half-open" or
// "open", which is how both failsafe-go and gobreaker name their states.
func (m *BackendMetrics) BreakerChanged(component, state string) {
	m.BreakerTransited.WithLabelValues(component, state).Inc()

	value := float64(breakerClosed)
	switch state {
	case "half-open":
		value = breakerHalfOpen
	case "open":
		value = breakerOpen
	}
	m.BreakerState.WithLabelValues(component).Set(value)
}
