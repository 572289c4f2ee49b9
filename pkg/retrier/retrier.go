// Package retrier implements a small bounded retry policy: a fixed
// attempt budget, a delay schedule, and a predicate deciding which
// errors are worth retrying at all.
package retrier

import (
	"context"
	"time"
)

const (
	defaultInterval   = 1 * time.Second
	defaultMaxRetries = 2
)

// Retrier retries an operation with a configurable delay between attempts.
type Retrier struct {
	interval   time.Duration
	multiplier float64
	maxRetries int
	retryIf    func(error) bool
}

// Option defines a function to configure the Retrier.
type Option func(*Retrier)

// WithInterval sets the delay before the first retry.
func WithInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.interval = d
	}
}

// WithMultiplier scales the delay after each retry. 1.0 keeps it fixed.
func WithMultiplier(m float64) Option {
	return func(r *Retrier) {
		r.multiplier = m
	}
}

// WithMaxRetries sets the number of retries after the initial attempt.
func WithMaxRetries(n int) Option {
	return func(r *Retrier) {
		r.maxRetries = n
	}
}

// WithRetryIf sets the predicate deciding whether an error is retryable.
// A non-retryable error aborts immediately and is returned as-is.
func WithRetryIf(pred func(error) bool) Option {
	return func(r *Retrier) {
		r.retryIf = pred
	}
}

// New creates a new Retrier with default values and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		interval:   defaultInterval,
		multiplier: 1.0,
		maxRetries: defaultMaxRetries,
		retryIf:    func(error) bool { return true },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// retry budget runs out. The last error is returned in the latter case.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	interval := r.interval

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}

			interval = time.Duration(float64(interval) * r.multiplier)
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !r.retryIf(err) {
			return err
		}
	}

	return err
}

// DoWithData executes the given function with retries and returns a value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
