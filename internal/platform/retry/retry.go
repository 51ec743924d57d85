// Package retry runs an operation until it succeeds, fails permanently, or
// runs out of attempts, sleeping with capped exponential backoff in between.
// It is used to ride out slow dependency startup (Postgres, Redis) at boot.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

type Policy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
	Clock    clockwork.Clock
	OnRetry  func(attempt int, err error, wait time.Duration)
}

// Startup is the policy used when connecting to backing services.
var Startup = Policy{
	Attempts: 6,
	Initial:  500 * time.Millisecond,
	Max:      8 * time.Second,
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the unwrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// ErrExhausted is wrapped by the error Do returns once every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

func (p Policy) backoff(attempt int) time.Duration {
	if p.Initial <= 0 {
		return 0
	}
	wait := p.Initial << (attempt - 1)
	if wait <= 0 || (p.Max > 0 && wait > p.Max) {
		return p.Max
	}
	return wait
}

func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	for attempt := 1; ; attempt++ {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if attempt >= p.Attempts {
			return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
		}

		wait := p.backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		select {
		case <-clock.After(wait):
		case <-ctx.Done():
			return zero, fmt.Errorf("retry interrupted: %w", ctx.Err())
		}
	}
}

func DoVoid(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
