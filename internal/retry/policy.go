// Package retry runs a call under an explicit policy: a bounded number of attempts,
// a backoff schedule and a predicate deciding which errors are worth another attempt.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy describes how a failing call is retried. The zero value runs the call once.
type Policy struct {
	// MaxAttempts counts the first call. Values below 1 are treated as 1.
	MaxAttempts int
	// InitialDelay is the wait after the first failed attempt.
	InitialDelay time.Duration
	// MaxDelay caps the wait between attempts. Zero means no cap.
	MaxDelay time.Duration
	// Multiplier grows the delay after each failure. Values below 1 give a fixed delay.
	Multiplier float64
	// Retryable reports whether err may succeed on another attempt. Nil retries every error.
	Retryable func(err error) bool
	// OnRetry is called before sleeping between attempts.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Fixed returns a policy that waits the same delay between attempts.
func Fixed(maxAttempts int, delay time.Duration, retryable func(error) bool) Policy {
	return Policy{MaxAttempts: maxAttempts, InitialDelay: delay, Multiplier: 1, Retryable: retryable}
}

// Exponential returns a policy whose delay doubles after each failure up to maxDelay.
func Exponential(maxAttempts int, initial, maxDelay time.Duration, retryable func(error) bool) Policy {
	return Policy{MaxAttempts: maxAttempts, InitialDelay: initial, MaxDelay: maxDelay, Multiplier: 2, Retryable: retryable}
}

// Delay returns the wait that follows the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.InitialDelay <= 0 {
		return 0
	}
	d := float64(p.InitialDelay)
	if p.Multiplier > 1 {
		for i := 1; i < attempt; i++ {
			d *= p.Multiplier
			if p.MaxDelay > 0 && d >= float64(p.MaxDelay) {
				return p.MaxDelay
			}
		}
	}
	if p.MaxDelay > 0 && time.Duration(d) > p.MaxDelay {
		return p.MaxDelay
	}
	return time.Duration(d)
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) shouldRetry(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the attempts run out.
// The error of the last attempt is returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	_, err := Do(ctx, p, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, fn(ctx, attempt)
	})
	return err
}

// Do is the value-returning form of Policy.Do.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	maxAttempts := p.attempts()
	for attempt := 1; ; attempt++ {
		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if attempt >= maxAttempts || !p.shouldRetry(err) {
			return zero, unwrapPermanent(err)
		}
		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if ctxErr := sleep(ctx, delay); ctxErr != nil {
			return zero, errors.Join(err, ctxErr)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying whatever the policy's predicate says.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func unwrapPermanent(err error) error {
	var perm *permanentError
	if errors.As(err, &perm) {
		return perm.err
	}
	return err
}
