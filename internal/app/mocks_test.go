package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// --- Mock implementations ---

type mockAnalysisRepo struct {
	createFn          func(ctx context.Context, a *domain.Analysis) error
	getFn             func(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	listFn            func(ctx context.Context, limit, offset int) ([]domain.AnalysisSummary, error)
	deleteFn          func(ctx context.Context, id uuid.UUID) error
	deleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockAnalysisRepo) Create(ctx context.Context, a *domain.Analysis) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return nil
}

func (m *mockAnalysisRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrAnalysisNotFound
}

func (m *mockAnalysisRepo) List(ctx context.Context, limit, offset int) ([]domain.AnalysisSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockAnalysisRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockAnalysisRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteOlderThanFn != nil {
		return m.deleteOlderThanFn(ctx, cutoff)
	}
	return 0, fmt.Errorf("not implemented")
}

type mockCache struct {
	getFn        func(ctx context.Context, id uuid.UUID) (*domain.Analysis, bool)
	setFn        func(ctx context.Context, a *domain.Analysis)
	invalidateFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCache) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, bool) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, false
}

func (m *mockCache) Set(ctx context.Context, a *domain.Analysis) {
	if m.setFn != nil {
		m.setFn(ctx, a)
	}
}

func (m *mockCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, id)
	}
	return nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPublisher) PublishInvalidation(ctx context.Context, id uuid.UUID) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, id)
	}
	return nil
}

type recordingObserver struct {
	mu         sync.Mutex
	completed  []domain.Source
	classified []domain.Counts
	purged     int64
}

func (o *recordingObserver) AnalysisCompleted(source domain.Source, _ domain.BatchSummary, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, source)
}

func (o *recordingObserver) LabelsClassified(_ domain.Kind, counts domain.Counts) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.classified = append(o.classified, counts)
}

func (o *recordingObserver) AnalysesPurged(n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.purged += n
}

func (o *recordingObserver) purgedTotal() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.purged
}
