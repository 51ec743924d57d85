package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
)

// QueryTracer records query latency and failures, labelled by statement verb
// to keep cardinality bounded.
type QueryTracer struct {
	metrics *metrics.BackendMetrics
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

func NewQueryTracer(m *metrics.BackendMetrics) *QueryTracer {
	return &QueryTracer{metrics: m}
}

type traceKey struct{}

type traceStart struct {
	at        time.Time
	operation string
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: time.Now(), operation: statementVerb(data.SQL)})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	t.metrics.DBQueryDuration.WithLabelValues(start.operation).Observe(time.Since(start.at).Seconds())
	if data.Err != nil {
		t.metrics.DBErrors.WithLabelValues(start.operation).Inc()
	}
}

var knownVerbs = map[string]bool{
	"select": true, "insert": true, "update": true, "delete": true,
	"with": true, "begin": true, "commit": true, "rollback": true,
}

func statementVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	verb := strings.ToLower(fields[0])
	if !knownVerbs[verb] {
		return "other"
	}
	return verb
}
