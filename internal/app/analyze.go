package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pscheid92/reviewpulse/internal/dataset"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/correlation"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
	"github.com/pscheid92/reviewpulse/internal/sentiment"
)

const (
	defaultPreviewRows = 5
	maxPreviewRows     = 100
	maxNameLength      = 200
)

type AnalyzeRequest struct {
	Name   string        `json:"name"`
	Source domain.Source `json:"source"`
	Column string        `json:"column"`
	Kind   string        `json:"kind"`
	// Records are analysed as given; an empty slice yields the no-data summary.
	Records []domain.Record `json:"records"`
}

// Analyze scores, labels and summarizes a batch, stores the result and primes
// the cache. An empty Kind means polarity.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.Analysis, error) {
	kind, err := parseKindOr(req.Kind, domain.KindPolarity)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, req, kind)
}

func (s *Service) analyze(ctx context.Context, req AnalyzeRequest, kind domain.Kind) (*domain.Analysis, error) {
	if err := s.checkRecordLimit(len(req.Records)); err != nil {
		return nil, err
	}
	name := dataset.CleanText(strings.TrimSpace(req.Name))
	if len(name) > maxNameLength {
		return nil, apperrors.Validationf("name must be at most %d characters", maxNameLength).WithField("field", "name")
	}
	source := req.Source
	if source == "" {
		source = domain.SourceInline
	}

	started := s.clock.Now()
	report, err := s.analyzer.Analyze(ctx, cleanRecords(req.Records), kind)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis id: %w", err)
	}
	a := &domain.Analysis{
		ID:        id,
		Name:      name,
		Source:    source,
		Column:    dataset.CleanText(strings.TrimSpace(req.Column)),
		CreatedAt: started.UTC().Truncate(time.Microsecond),
		Report:    *report,
	}
	if a.Name == "" {
		a.Name = defaultName(a)
	}

	if err := s.analyses.Create(ctx, a); err != nil {
		return nil, err
	}
	s.cache.Set(correlation.Detach(ctx), a)

	elapsed := s.clock.Since(started)
	s.observer.AnalysisCompleted(source, a.Summary, elapsed)
	s.observer.LabelsClassified(kind, a.Summary.Counts)

	return a, nil
}

func defaultName(a *domain.Analysis) string {
	if a.Column == "" {
		return fmt.Sprintf("%s analysis", a.Source)
	}
	return fmt.Sprintf("%s: %s", a.Source, a.Column)
}

// cleanRecords returns records with storable raw text. The caller's slice is
// copied before the first change.
func cleanRecords(records []domain.Record) []domain.Record {
	out, copied := records, false
	for i, r := range records {
		raw := dataset.CleanText(r.Raw)
		if raw == r.Raw {
			continue
		}
		if !copied {
			out, copied = slices.Clone(records), true
		}
		out[i].Raw = raw
	}
	return out
}

// AnalyzeTable analyses one column of a table. An empty column selects the
// first free-text column; an empty kind is detected from the cells.
func (s *Service) AnalyzeTable(ctx context.Context, name string, source domain.Source, t *dataset.Table, column, kind string) (*domain.Analysis, error) {
	column, cells, err := selectColumn(t, column)
	if err != nil {
		return nil, err
	}

	k, err := parseKindOr(kind, sentiment.DetectColumn(cells).Kind)
	if err != nil {
		return nil, err
	}

	records, err := t.Records(column)
	if err != nil {
		return nil, columnError(t, column, err)
	}

	return s.analyze(ctx, AnalyzeRequest{
		Name:    name,
		Source:  source,
		Column:  column,
		Records: records,
	}, k)
}

// AnalyzeSample analyses a column of the built-in review table.
func (s *Service) AnalyzeSample(ctx context.Context, column, kind string) (*domain.Analysis, error) {
	return s.AnalyzeTable(ctx, "", domain.SourceSample, dataset.Sample(), column, kind)
}

// ColumnInfo describes one column of an uploaded or built-in table.
type ColumnInfo struct {
	Name      string              `json:"name"`
	Detection sentiment.Detection `json:"detection"`
}

type PreviewRow struct {
	Row   int          `json:"row"`
	Raw   string       `json:"raw"`
	Score *float64     `json:"score"`
	Label domain.Label `json:"label,omitempty"`
	Valid bool         `json:"valid"`
}

type Preview struct {
	Columns []ColumnInfo `json:"columns"`
	Column  string       `json:"column"`
	Kind    domain.Kind  `json:"kind"`
	Total   int          `json:"total_rows"`
	Rows    []PreviewRow `json:"rows"`
}

// Preview labels the first n rows of a column. The kind is detected from the
// whole column so that rescaling uses every value, not just the head.
func (s *Service) Preview(ctx context.Context, t *dataset.Table, column, kind string, n int) (*Preview, error) {
	switch {
	case n <= 0:
		n = defaultPreviewRows
	case n > maxPreviewRows:
		n = maxPreviewRows
	}

	column, cells, err := selectColumn(t, column)
	if err != nil {
		return nil, err
	}

	columns := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		colCells, _ := t.Column(c)
		columns[i] = ColumnInfo{Name: c, Detection: sentiment.DetectColumn(colCells)}
	}

	k, err := parseKindOr(kind, sentiment.DetectColumn(cells).Kind)
	if err != nil {
		return nil, err
	}

	records, err := t.Records(column)
	if err != nil {
		return nil, columnError(t, column, err)
	}
	scored, err := s.analyzer.Classify(ctx, records, k)
	if err != nil {
		return nil, err
	}

	head := scored[:min(n, len(scored))]
	rows := make([]PreviewRow, len(head))
	for i, r := range head {
		rows[i] = PreviewRow{Row: i, Raw: r.Raw, Score: r.Score, Label: r.Label, Valid: r.Valid}
	}

	return &Preview{
		Columns: columns,
		Column:  column,
		Kind:    k,
		Total:   len(t.Rows),
		Rows:    rows,
	}, nil
}

// PreviewSample previews the built-in review table.
func (s *Service) PreviewSample(ctx context.Context, column, kind string, n int) (*Preview, error) {
	return s.Preview(ctx, dataset.Sample(), column, kind, n)
}

func selectColumn(t *dataset.Table, column string) (string, []string, error) {
	if t == nil || len(t.Columns) == 0 {
		return "", nil, apperrors.Validation("table has no columns")
	}
	if strings.TrimSpace(column) == "" {
		column = t.DefaultColumn(func(cells []string) bool {
			return sentiment.DetectColumn(cells).Kind == domain.KindPolarity
		})
	}

	idx, err := t.ColumnIndex(column)
	if err != nil {
		return "", nil, columnError(t, column, err)
	}
	column = t.Columns[idx]
	cells, _ := t.Column(column)
	return column, cells, nil
}

func columnError(t *dataset.Table, column string, err error) error {
	return apperrors.Validationf("unknown column %q", column).
		WithField("columns", t.Columns).
		WithCause(err)
}
