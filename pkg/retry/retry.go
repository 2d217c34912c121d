// Package retry repeats calls to the remote document stores (PostgreSQL and
// Redis) with capped exponential backoff and jitter. A turn is waiting on
// every call, so budgets are counted in milliseconds.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// PermanentError marks a failure that no retry can fix, such as a rejected
// statement.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so Do returns it at once. Nil stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// Config is the retry policy.
type Config struct {
	// MaxAttempts counts the first call.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter spreads each delay by up to this fraction either way.
	Jitter float64

	// RetryIf decides which errors are worth another attempt. Nil retries
	// everything that is not Permanent.
	RetryIf func(error) bool
	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

type Option func(*Config)

func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.InitialDelay = d
		}
	}
}

func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.MaxDelay = d
		}
	}
}

func WithMultiplier(m float64) Option {
	return func(c *Config) {
		if m >= 1 {
			c.Multiplier = m
		}
	}
}

func WithJitter(j float64) Option {
	return func(c *Config) {
		if j >= 0 && j <= 1 {
			c.Jitter = j
		}
	}
}

func WithRetryIf(fn func(error) bool) Option {
	return func(c *Config) { c.RetryIf = fn }
}

func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(c *Config) { c.OnRetry = fn }
}

// Retrier runs calls under one policy. It is safe for concurrent use.
type Retrier struct {
	cfg Config
}

// New builds a Retrier. Defaults: 3 attempts, 100ms doubling to at most 2s,
// 10% jitter.
func New(opts ...Option) *Retrier {
	cfg := Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2,
		Jitter:       0.1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Retrier{cfg: cfg}
}

// DocumentStoreRetrier keeps the whole budget well under a second.
// extra is applied after the defaults.
func DocumentStoreRetrier(extra ...Option) *Retrier {
	opts := []Option{
		WithMaxAttempts(3),
		WithInitialDelay(25 * time.Millisecond),
		WithMaxDelay(250 * time.Millisecond),
		WithMultiplier(2),
		WithJitter(0.1),
	}
	return New(append(opts, extra...)...)
}

// Do calls op until it succeeds, fails with an error not worth retrying, or
// runs out of attempts. A Permanent error is returned unwrapped. Cancelling
// ctx stops the wait and returns the last error seen.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var last error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		last = err
		if attempt >= r.cfg.MaxAttempts || !r.retryable(err) {
			return err
		}

		delay := r.delay(attempt)
		if r.cfg.OnRetry != nil {
			r.cfg.OnRetry(attempt, err, delay)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last
		case <-timer.C:
		}
	}
}

func (r *Retrier) retryable(err error) bool {
	if r.cfg.RetryIf == nil {
		return true
	}
	return r.cfg.RetryIf(err)
}

// delay is InitialDelay * Multiplier^(attempt-1), capped, then jittered.
func (r *Retrier) delay(attempt int) time.Duration {
	d := math.Min(
		float64(r.cfg.InitialDelay)*math.Pow(r.cfg.Multiplier, float64(attempt-1)),
		float64(r.cfg.MaxDelay),
	)
	if r.cfg.Jitter > 0 {
		d += d * r.cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(math.Max(d, 0))
}

// Do runs op under a one-off Retrier.
func Do(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	return New(opts...).Do(ctx, op)
}
