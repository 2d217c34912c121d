// Package circuitbreaker stops a turn from waiting on a remote document store
// that is known to be down. After enough consecutive failures the breaker
// opens and calls fail at once; once the cool-down passes a limited number of
// trial calls decide whether it closes again.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var (
	// ErrCircuitOpen rejects calls during the cool-down.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests rejects calls while the trial slots are taken.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Rejected reports whether err came from the breaker rather than the call.
func Rejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests)
}

// Config tunes a breaker. Zero fields take the defaults of New.
type Config struct {
	Name string

	// FailureThreshold consecutive failures open a closed breaker.
	FailureThreshold int
	// SuccessThreshold consecutive trial successes close a half-open breaker.
	SuccessThreshold int
	// Cooldown is how long an open breaker rejects calls.
	Cooldown time.Duration
	// MaxTrialCalls bounds concurrent calls while half-open.
	MaxTrialCalls int

	OnStateChange func(name string, from, to State)
	// IsFailure filters which errors count. Nil counts every error.
	IsFailure func(error) bool
	Clock     func() time.Time
}

type Option func(*Config)

func WithFailureThreshold(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.FailureThreshold = n
		}
	}
}

func WithSuccessThreshold(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.SuccessThreshold = n
		}
	}
}

func WithCooldown(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Cooldown = d
		}
	}
}

func WithMaxTrialCalls(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTrialCalls = n
		}
	}
}

func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(c *Config) { c.OnStateChange = fn }
}

func WithIsFailure(fn func(error) bool) Option {
	return func(c *Config) { c.IsFailure = fn }
}

func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	cfg Config

	mu        sync.Mutex
	state     State
	failures  int // consecutive, while closed
	successes int // consecutive, while half-open
	inFlight  int // trial calls running, while half-open
	openedAt  time.Time
}

// New builds a closed breaker. Defaults: 5 failures to open, 2 trial
// successes to close, 30s cool-down, 1 trial call at a time.
func New(name string, opts ...Option) *CircuitBreaker {
	cfg := Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
		MaxTrialCalls:    1,
		Clock:            time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &CircuitBreaker{cfg: cfg}
}

// DocumentStoreBreaker is tuned for the remote document stores: a turn is
// waiting, so the cool-down is short.
func DocumentStoreBreaker(name string, onStateChange func(name string, from, to State), extra ...Option) *CircuitBreaker {
	opts := []Option{
		WithFailureThreshold(5),
		WithSuccessThreshold(2),
		WithCooldown(15 * time.Second),
		WithMaxTrialCalls(1),
		WithOnStateChange(onStateChange),
	}
	return New(name, append(opts, extra...)...)
}

// Execute runs fn unless the breaker rejects it, and feeds the result back.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	trial, err := cb.admit()
	if err != nil {
		return err
	}
	err = fn(ctx)
	cb.record(trial, cb.counts(err))
	return err
}

// ExecuteWithFallback is Execute, except that a rejected call runs fallback
// with the rejection instead.
func (cb *CircuitBreaker) ExecuteWithFallback(ctx context.Context, fn func(context.Context) error, fallback func(error) error) error {
	err := cb.Execute(ctx, fn)
	if Rejected(err) {
		return fallback(err)
	}
	return err
}

// State reports the position, moving an open breaker whose cool-down has
// passed to half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expireCooldown()
	return cb.state
}

func (cb *CircuitBreaker) counts(err error) bool {
	if err == nil {
		return false
	}
	return cb.cfg.IsFailure == nil || cb.cfg.IsFailure(err)
}

func (cb *CircuitBreaker) admit() (trial bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.expireCooldown()
	switch cb.state {
	case StateOpen:
		return false, ErrCircuitOpen
	case StateHalfOpen:
		if cb.inFlight >= cb.cfg.MaxTrialCalls {
			return false, ErrTooManyRequests
		}
		cb.inFlight++
		return true, nil
	}
	return false, nil
}

func (cb *CircuitBreaker) record(trial, failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if trial && cb.inFlight > 0 {
		cb.inFlight--
	}

	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.open()
		}
	case StateHalfOpen:
		if failed {
			cb.open()
			return
		}
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.transition(StateClosed)
		}
	}
	// A call admitted while closed can finish after the breaker opened; its
	// result says nothing about the current cool-down.
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.cfg.Clock()
	cb.transition(StateOpen)
}

func (cb *CircuitBreaker) expireCooldown() {
	if cb.state == StateOpen && cb.cfg.Clock().Sub(cb.openedAt) >= cb.cfg.Cooldown {
		cb.transition(StateHalfOpen)
	}
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.failures, cb.successes, cb.inFlight = 0, 0, 0
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}
