package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/reviewpulse/internal/domain"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
	"github.com/pscheid92/reviewpulse/internal/sentiment"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	sweepTimeout     = time.Minute
)

// Observer receives a callback for every completed unit of work. The metrics
// adapter implements it.
type Observer interface {
	AnalysisCompleted(source domain.Source, summary domain.BatchSummary, elapsed time.Duration)
	LabelsClassified(kind domain.Kind, counts domain.Counts)
	AnalysesPurged(n int64)
}

type nopObserver struct{}

func (nopObserver) AnalysisCompleted(domain.Source, domain.BatchSummary, time.Duration) {}
func (nopObserver) LabelsClassified(domain.Kind, domain.Counts)                         {}
func (nopObserver) AnalysesPurged(int64)                                                {}

type Options struct {
	// MaxRecords bounds a single analysis. Zero means unlimited.
	MaxRecords int
	// Retention enables the sweeper when positive.
	Retention     time.Duration
	SweepInterval time.Duration
}

// Service is the application layer. It is the only component that references
// multiple domain components.
type Service struct {
	analyzer  *sentiment.Analyzer
	analyses  domain.AnalysisRepository
	cache     domain.AnalysisCache
	publisher domain.InvalidationPublisher
	observer  Observer
	clock     clockwork.Clock
	opts      Options

	loadGroup singleflight.Group
	stopCh    chan struct{}
	stopOnce  sync.Once
	bgWg      sync.WaitGroup
}

// NewService wires the service and starts the retention sweeper when enabled.
// observer may be nil.
func NewService(
	analyzer *sentiment.Analyzer,
	analyses domain.AnalysisRepository,
	cache domain.AnalysisCache,
	publisher domain.InvalidationPublisher,
	observer Observer,
	clock clockwork.Clock,
	opts Options,
) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	s := &Service{
		analyzer:  analyzer,
		analyses:  analyses,
		cache:     cache,
		publisher: publisher,
		observer:  observer,
		clock:     clock,
		opts:      opts,
		stopCh:    make(chan struct{}),
	}

	if opts.Retention > 0 && opts.SweepInterval > 0 {
		s.startSweeper()
	}
	return s
}

// GetAnalysis reads through the cache. Concurrent misses for the same ID share
// one repository call.
func (s *Service) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	if a, ok := s.cache.Get(ctx, id); ok {
		return a, nil
	}

	// The load is shared by every waiter, so it must outlive the first caller.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loadGroup.Do(id.String(), func() (any, error) {
		a, err := s.analyses.Get(loadCtx, id)
		if err != nil {
			return nil, err
		}
		s.cache.Set(loadCtx, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Analysis), nil
}

// ListAnalyses returns summaries newest first. limit defaults to 20 and is
// capped at 100.
func (s *Service) ListAnalyses(ctx context.Context, limit, offset int) ([]domain.AnalysisSummary, error) {
	if offset < 0 {
		return nil, apperrors.Validation("offset must not be negative").WithField("offset", offset)
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	summaries, err := s.analyses.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []domain.AnalysisSummary{}
	}
	return summaries, nil
}

// DeleteAnalysis removes the analysis and tells every instance to drop it.
// Cache failures after a successful delete are logged; the memory layer TTL
// bounds how long a stale copy can be served.
func (s *Service) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	if err := s.analyses.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate analysis cache", "analysis_id", id, "error", err)
	}
	if err := s.publisher.PublishInvalidation(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to publish analysis invalidation", "analysis_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Analysis deleted", "analysis_id", id)
	return nil
}

// SweepExpired deletes analyses older than the retention period.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	if s.opts.Retention <= 0 {
		return 0, nil
	}

	cutoff := s.clock.Now().Add(-s.opts.Retention)
	n, err := s.analyses.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.observer.AnalysesPurged(n)
		slog.InfoContext(ctx, "Expired analyses removed", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

func (s *Service) startSweeper() {
	ticker := s.clock.NewTicker(s.opts.SweepInterval)
	s.bgWg.Add(1)
	go func() {
		defer s.bgWg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				s.sweepOnce()
			case <-s.stopCh:
				return
			}
		}
	}()
	slog.Info("Retention sweeper started", "retention", s.opts.Retention, "interval", s.opts.SweepInterval)
}

func (s *Service) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.SweepExpired(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Retention sweep failed", "error", err)
	}
}

// Stop stops the sweeper and waits for an in-flight sweep. It is safe to call
// more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.bgWg.Wait()
}
