package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

const breakerComponent = "postgres"

type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// OnStateChange is called with "closed", "half-open" or "open".
	OnStateChange func(component, state string)
}

var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
}

// BreakerRepo fails fast with domain.ErrStoreUnavailable while Postgres keeps
// failing, instead of letting every request wait out its own timeout.
type BreakerRepo struct {
	next domain.AnalysisRepository
	cb   *gobreaker.CircuitBreaker
}

var _ domain.AnalysisRepository = (*BreakerRepo)(nil)

func NewBreakerRepo(next domain.AnalysisRepository, s BreakerSettings) *BreakerRepo {
	threshold := s.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultBreakerSettings.ConsecutiveFailures
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    breakerComponent,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: healthyOutcome,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			if s.OnStateChange != nil {
				s.OnStateChange(name, to.String())
			}
		},
	})

	return &BreakerRepo{next: next, cb: cb}
}

// State reports the breaker state for health checks.
func (r *BreakerRepo) State() gobreaker.State {
	return r.cb.State()
}

// healthyOutcome treats answers the database gave on purpose as successes.
func healthyOutcome(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrAnalysisNotFound) ||
		errors.Is(err, context.Canceled)
}

func call[T any](r *BreakerRepo, op func() (T, error)) (T, error) {
	out, err := r.cb.Execute(func() (any, error) { return op() })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

func (r *BreakerRepo) Create(ctx context.Context, a *domain.Analysis) error {
	_, err := call(r, func() (struct{}, error) { return struct{}{}, r.next.Create(ctx, a) })
	return err
}

func (r *BreakerRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	return call(r, func() (*domain.Analysis, error) { return r.next.Get(ctx, id) })
}

func (r *BreakerRepo) List(ctx context.Context, limit, offset int) ([]domain.AnalysisSummary, error) {
	return call(r, func() ([]domain.AnalysisSummary, error) { return r.next.List(ctx, limit, offset) })
}

func (r *BreakerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := call(r, func() (struct{}, error) { return struct{}{}, r.next.Delete(ctx, id) })
	return err
}

func (r *BreakerRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return call(r, func() (int64, error) { return r.next.DeleteOlderThan(ctx, cutoff) })
}
