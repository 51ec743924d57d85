package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/reviewpulse/internal/dataset"
	"github.com/pscheid92/reviewpulse/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func newTestAnalysis(name string, createdAt time.Time) *domain.Analysis {
	return &domain.Analysis{
		ID:        uuid.New(),
		Name:      name,
		Source:    domain.SourceUpload,
		Column:    "rating",
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
		Report: domain.Report{
			Summary: domain.BatchSummary{
				Kind:        domain.KindRating,
				Total:       3,
				Valid:       2,
				Counts:      domain.Counts{Positive: 1, Negative: 1},
				Percentages: domain.Percentages{Positive: 50, Negative: 50},
				Mean:        3,
				Tier:        domain.TierModerate,
				Narrative:   "Work-Life Balance Analysis:",
			},
			Records: []domain.ScoredRecord{
				{Record: domain.Record{Raw: "5", Value: ptr(5)}, Score: ptr(5), Label: domain.LabelPositive, Valid: true},
				{Record: domain.Record{Raw: "n/a"}},
				{Record: domain.Record{Raw: "1", Value: ptr(1)}, Score: ptr(1), Label: domain.LabelNegative, Valid: true},
			},
			Stats: &domain.NumericStats{
				Count: 2, Mean: 3, Median: 3, Min: 1, Max: 5,
				Distribution: []domain.Bucket{{Value: 1, Count: 1}, {Value: 5, Count: 1}},
			},
		},
	}
}

func TestAnalysisRepo_CreateAndGet(t *testing.T) {
	repo := NewAnalysisRepo(setupTestDB(t))
	ctx := context.Background()
	want := newTestAnalysis("ratings", time.Now())

	require.NoError(t, repo.Create(ctx, want))

	got, err := repo.Get(ctx, want.ID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.Column, got.Column)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.Stats, got.Stats)
	assert.Nil(t, got.Words)
	assert.Equal(t, want.Records, got.Records)
}

func TestAnalysisRepo_CreateKeepsWordFrequencies(t *testing.T) {
	repo := NewAnalysisRepo(setupTestDB(t))
	ctx := context.Background()
	a := newTestAnalysis("text", time.Now())
	a.Summary.Kind = domain.KindPolarity
	a.Stats = nil
	a.Words = &domain.WordFrequencies{
		Positive: []domain.WordCount{{Word: "great", Count: 2}},
		Negative: []domain.WordCount{},
	}

	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Stats)
	assert.Equal(t, a.Words, got.Words)
}

func TestAnalysisRepo_CreateEmptyBatch(t *testing.T) {
	repo := NewAnalysisRepo(setupTestDB(t))
	ctx := context.Background()
	a := newTestAnalysis("empty", time.Now())
	a.Records = nil
	a.Summary = domain.BatchSummary{Kind: domain.KindPolarity, Tier: domain.TierNoData, Narrative: "No data available"}

	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Records)
	assert.Equal(t, domain.TierNoData, got.Summary.Tier)
}

func TestAnalysisRepo_CreateStoresCleanedText(t *testing.T) {
	repo := NewAnalysisRepo(setupTestDB(t))
	ctx := context.Background()
	a := newTestAnalysis(dataset.CleanText("caf\xe9 survey\x00"), time.Now())
	a.Column = dataset.CleanText("comm\xffent")
	a.Records[1].Raw = dataset.CleanText("n/a\x00 \xe9")

	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "caf\uFFFD survey", got.Name)
	assert.Equal(t, "comm\uFFFDent", got.Column)
	assert.Equal(t, "n/a \uFFFD", got.Records[1].Raw)
}

func TestAnalysisRepo_CreateDuplicateRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewAnalysisRepo(pool)
	ctx := context.Background()
	a := newTestAnalysis("dup", time.Now())

	require.NoError(t, repo.Create(ctx, a))
	require.Error(t, repo.Create(ctx, a))

	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM analysis_records WHERE analysis_id = $1", a.ID).Scan(&n))
	assert.Equal(t, len(a.Records), n)
}

func TestAnalysisRepo_GetNotFound(t *testing.T) {
	repo := NewAnalysisRepo(setupTestDB(t))

	got, err := repo.Get(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
	assert.Nil(t, got)
}

func TestAnalysisRepo_ListNewestFirst(t *testing.T) {
	repo := NewAnalysisRepo(setupTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, name := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, repo.Create(ctx, newTestAnalysis(name, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "newest", all[0].Name)
	assert.Equal(t, "oldest", all[2].Name)
	assert.Equal(t, domain.KindRating, all[0].Summary.Kind)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "middle", page[0].Name)

	empty, err := repo.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAnalysisRepo_Delete(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewAnalysisRepo(pool)
	ctx := context.Background()
	a := newTestAnalysis("gone", time.Now())
	require.NoError(t, repo.Create(ctx, a))

	require.NoError(t, repo.Delete(ctx, a.ID))

	_, err := repo.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)

	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM analysis_records WHERE analysis_id = $1", a.ID).Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, repo.Delete(ctx, a.ID), domain.ErrAnalysisNotFound)
}

func TestAnalysisRepo_DeleteOlderThan(t *testing.T) {
	repo := NewAnalysisRepo(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	old := newTestAnalysis("old", now.Add(-48*time.Hour))
	fresh := newTestAnalysis("fresh", now)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))

	n, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, old.ID)
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
	_, err = repo.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}
