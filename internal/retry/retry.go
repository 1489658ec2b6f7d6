// Package retry runs remote operations that may fail transiently.
package retry

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of attempts, including the first.
	DefaultMaxAttempts = 2
	// DefaultDelay is the fixed wait between attempts.
	DefaultDelay = time.Second
)

// Policy describes how an operation is retried. The zero value retries
// with the package defaults.
//
// Callers must only retry operations whose effect is absolute (set a
// field to a value), never ones that increment or append.
type Policy struct {
	// MaxAttempts is the total attempt budget. Values below 1 use
	// DefaultMaxAttempts.
	MaxAttempts int

	// Delay is the fixed wait between attempts. Zero uses DefaultDelay;
	// a negative value disables the wait.
	Delay time.Duration

	// Retryable classifies errors. Nil retries every error.
	Retryable func(error) bool

	// Sleep waits between attempts. Nil waits on a timer and honors
	// context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p Policy) delay() time.Duration {
	if p.Delay == 0 {
		return DefaultDelay
	}
	if p.Delay < 0 {
		return 0
	}
	return p.Delay
}

// Do invokes op until it succeeds or the attempt budget is spent. The
// error from the final attempt is returned unchanged.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Value(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	attempts := p.attempts()

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= attempts {
			return zero, err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		if waitErr := sleep(ctx, p.delay()); waitErr != nil {
			return zero, waitErr
		}
	}
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
