package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Source names where the records of an analysis came from.
type Source string

const (
	SourceInline Source = "inline"
	SourceUpload Source = "upload"
	SourceSample Source = "sample"
)

// NumericStats describes the raw values of a numeric column.
type NumericStats struct {
	Count        int      `json:"count"`
	Mean         float64  `json:"mean"`
	Median       float64  `json:"median"`
	Min          float64  `json:"min"`
	Max          float64  `json:"max"`
	Distribution []Bucket `json:"distribution"`
}

// Bucket is one distinct value and how often it occurs.
type Bucket struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// WordCount is a token and its frequency.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordFrequencies holds the most frequent words of positive and negative records.
type WordFrequencies struct {
	Positive []WordCount `json:"positive"`
	Negative []WordCount `json:"negative"`
}

// Report is the full result of analysing one batch.
type Report struct {
	Summary BatchSummary     `json:"summary"`
	Records []ScoredRecord   `json:"records"`
	Stats   *NumericStats    `json:"stats,omitempty"`
	Words   *WordFrequencies `json:"words,omitempty"`
}

// Analysis is a persisted Report.
type Analysis struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Source    Source    `json:"source"`
	Column    string    `json:"column"`
	CreatedAt time.Time `json:"created_at"`
	Report
}

// AnalysisSummary is the list view of an Analysis, without records.
type AnalysisSummary struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Source    Source       `json:"source"`
	Column    string       `json:"column"`
	CreatedAt time.Time    `json:"created_at"`
	Summary   BatchSummary `json:"summary"`
}

func (a *Analysis) Brief() AnalysisSummary {
	return AnalysisSummary{
		ID:        a.ID,
		Name:      a.Name,
		Source:    a.Source,
		Column:    a.Column,
		CreatedAt: a.CreatedAt,
		Summary:   a.Summary,
	}
}

type AnalysisRepository interface {
	Create(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id uuid.UUID) (*Analysis, error)
	List(ctx context.Context, limit, offset int) ([]AnalysisSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AnalysisCache is a read-through cache in front of AnalysisRepository.
type AnalysisCache interface {
	Get(ctx context.Context, id uuid.UUID) (*Analysis, bool)
	Set(ctx context.Context, a *Analysis)
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// InvalidationPublisher tells other instances to drop a cached analysis.
type InvalidationPublisher interface {
	PublishInvalidation(ctx context.Context, id uuid.UUID) error
}
