package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// AnalysisMetrics records what the service computes. It satisfies app.Observer.
type AnalysisMetrics struct {
	Analyses       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	RecordsScored  *prometheus.CounterVec
	LabelsAssigned *prometheus.CounterVec
	Purged         prometheus.Counter
}

func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of analyses run, by kind and source.",
		}, []string{"kind", "source"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent scoring and summarizing a batch, by kind.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"kind"}),
		RecordsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_scored_total",
			Help:      "Total number of records scored, by kind and validity.",
		}, []string{"kind", "valid"}),
		LabelsAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "labels_assigned_total",
			Help:      "Total number of sentiment labels assigned, by kind and label.",
		}, []string{"kind", "label"}),
		Purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_purged_total",
			Help:      "Total number of stored analyses removed by the retention sweeper.",
		}),
	}

	reg.MustRegister(m.Analyses, m.Duration, m.RecordsScored, m.LabelsAssigned, m.Purged)
	return m
}

func (m *AnalysisMetrics) AnalysisCompleted(source domain.Source, summary domain.BatchSummary, elapsed time.Duration) {
	kind := string(summary.Kind)
	m.Analyses.WithLabelValues(kind, string(source)).Inc()
	m.Duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	m.RecordsScored.WithLabelValues(kind, "true").Add(float64(summary.Valid))
	m.RecordsScored.WithLabelValues(kind, "false").Add(float64(summary.Total - summary.Valid))
	m.LabelsClassified(summary.Kind, summary.Counts)
}

func (m *AnalysisMetrics) LabelsClassified(kind domain.Kind, counts domain.Counts) {
	m.LabelsAssigned.WithLabelValues(string(kind), string(domain.LabelPositive)).Add(float64(counts.Positive))
	m.LabelsAssigned.WithLabelValues(string(kind), string(domain.LabelNeutral)).Add(float64(counts.Neutral))
	m.LabelsAssigned.WithLabelValues(string(kind), string(domain.LabelNegative)).Add(float64(counts.Negative))
}

func (m *AnalysisMetrics) AnalysesPurged(n int64) {
	m.Purged.Add(float64(n))
}
