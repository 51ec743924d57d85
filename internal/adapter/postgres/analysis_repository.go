package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

type AnalysisRepo struct {
	pool *pgxpool.Pool
}

var _ domain.AnalysisRepository = (*AnalysisRepo)(nil)

func NewAnalysisRepo(pool *pgxpool.Pool) *AnalysisRepo {
	return &AnalysisRepo{pool: pool}
}

const insertAnalysis = `
INSERT INTO analyses (
    id, name, source, column_name, kind, total, valid,
    positive, neutral, negative, pct_positive, pct_neutral, pct_negative,
    mean, tier, narrative, stats, words, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

var recordColumns = []string{"analysis_id", "position", "raw", "value", "score", "label", "valid"}

// Create stores the analysis and all of its records in one transaction.
func (r *AnalysisRepo) Create(ctx context.Context, a *domain.Analysis) error {
	stats, err := marshalOptional(a.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	words, err := marshalOptional(a.Words)
	if err != nil {
		return fmt.Errorf("failed to encode word frequencies: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s := a.Summary
	_, err = tx.Exec(ctx, insertAnalysis,
		a.ID, a.Name, string(a.Source), a.Column, string(s.Kind), s.Total, s.Valid,
		s.Counts.Positive, s.Counts.Neutral, s.Counts.Negative,
		s.Percentages.Positive, s.Percentages.Neutral, s.Percentages.Negative,
		s.Mean, string(s.Tier), s.Narrative, stats, words, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	rows := pgx.CopyFromSlice(len(a.Records), func(i int) ([]any, error) {
		rec := a.Records[i]
		return []any{a.ID, i, rec.Raw, rec.Value, rec.Score, string(rec.Label), rec.Valid}, nil
	})
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"analysis_records"}, recordColumns, rows); err != nil {
		return fmt.Errorf("failed to copy analysis records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

const selectSummaryColumns = `
    id, name, source, column_name, created_at, kind, total, valid,
    positive, neutral, negative, pct_positive, pct_neutral, pct_negative,
    mean, tier, narrative`

func (r *AnalysisRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	var (
		a            domain.Analysis
		stats, words []byte
	)
	row := r.pool.QueryRow(ctx, `SELECT`+selectSummaryColumns+`, stats, words FROM analyses WHERE id = $1`, id)

	brief, err := scanSummary(row, &stats, &words)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	a.ID, a.Name, a.Source, a.Column, a.CreatedAt = brief.ID, brief.Name, brief.Source, brief.Column, brief.CreatedAt
	a.Summary = brief.Summary

	if a.Stats, err = unmarshalOptional[domain.NumericStats](stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	if a.Words, err = unmarshalOptional[domain.WordFrequencies](words); err != nil {
		return nil, fmt.Errorf("failed to decode word frequencies: %w", err)
	}

	if a.Records, err = r.records(ctx, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnalysisRepo) records(ctx context.Context, id uuid.UUID) ([]domain.ScoredRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT raw, value, score, label, valid FROM analysis_records WHERE analysis_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis records: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScoredRecord, error) {
		var (
			rec   domain.ScoredRecord
			label string
		)
		err := row.Scan(&rec.Raw, &rec.Value, &rec.Score, &label, &rec.Valid)
		rec.Label = domain.Label(label)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis records: %w", err)
	}
	return records, nil
}

// List returns analyses newest first.
func (r *AnalysisRepo) List(ctx context.Context, limit, offset int) ([]domain.AnalysisSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+selectSummaryColumns+` FROM analyses ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AnalysisSummary, error) {
		return scanSummary(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read analyses: %w", err)
	}
	return summaries, nil
}

func (r *AnalysisRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnalysisNotFound
	}
	return nil
}

// DeleteOlderThan removes analyses created strictly before cutoff and
// reports how many were removed. Records go with them via ON DELETE CASCADE.
func (r *AnalysisRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM analyses WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired analyses: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanSummary reads the columns of selectSummaryColumns followed by any extra destinations.
func scanSummary(row pgx.Row, extra ...any) (domain.AnalysisSummary, error) {
	var (
		a                  domain.AnalysisSummary
		source, kind, tier string
		s                  = &a.Summary
	)
	dest := []any{
		&a.ID, &a.Name, &source, &a.Column, &a.CreatedAt, &kind, &s.Total, &s.Valid,
		&s.Counts.Positive, &s.Counts.Neutral, &s.Counts.Negative,
		&s.Percentages.Positive, &s.Percentages.Neutral, &s.Percentages.Negative,
		&s.Mean, &tier, &s.Narrative,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.AnalysisSummary{}, err
	}
	a.Source = domain.Source(source)
	s.Kind = domain.Kind(kind)
	s.Tier = domain.Tier(tier)
	return a, nil
}

func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalOptional[T any](data []byte) (*T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
