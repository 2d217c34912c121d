package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/circuitbreaker"
	"github.com/xuexi-helper/study-helper/pkg/retry"
)

// maxStaleDocuments bounds the last-known-good copies a ResilientStore keeps.
const maxStaleDocuments = 4096

// ResilientStore wraps a remote Store with retries and a circuit breaker.
// While the breaker is open writes fail fast with shared.ErrStoreUnavailable
// and reads are served from the last copy this process loaded or saved, so
// progress views keep working through an outage.
type ResilientStore struct {
	inner   Store
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger

	mu    sync.Mutex
	stale map[string][]byte
}

// transient reports whether err is worth retrying or counting against the
// breaker. Missing documents, bad input and caller cancellation are not.
func transient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

// NewResilientStore wraps inner. name labels the breaker in logs.
func NewResilientStore(inner Store, name string, logger *slog.Logger, opts ...circuitbreaker.Option) *ResilientStore {
	if logger == nil {
		logger = slog.Default()
	}
	onChange := func(name string, from, to circuitbreaker.State) {
		logger.Warn("document store breaker changed state",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	opts = append([]circuitbreaker.Option{circuitbreaker.WithIsFailure(transient)}, opts...)
	return &ResilientStore{
		inner:   inner,
		retrier: retry.DocumentStoreRetrier(retry.WithRetryIf(transient)),
		breaker: circuitbreaker.DocumentStoreBreaker(name, onChange, opts...),
		logger:  logger,
		stale:   make(map[string][]byte),
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
}

func (s *ResilientStore) call(op func(ctx context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error { return s.retrier.Do(ctx, op) }
}

// Load implements Store.
func (s *ResilientStore) Load(ctx context.Context, concern Concern, key string) ([]byte, error) {
	var data []byte
	err := s.breaker.ExecuteWithFallback(ctx, s.call(func(ctx context.Context) error {
		var err error
		data, err = s.inner.Load(ctx, concern, key)
		return err
	}), func(rejected error) error {
		cached, ok := s.lastKnown(concern, key)
		if !ok {
			return unavailable(rejected)
		}
		s.logger.Debug("serving last known document", "concern", string(concern), "key", key)
		data = cached
		return nil
	})
	if err == nil {
		s.remember(concern, key, data)
	}
	return data, err
}

// Save implements Store.
func (s *ResilientStore) Save(ctx context.Context, concern Concern, key string, data []byte) error {
	err := s.breaker.Execute(ctx, s.call(func(ctx context.Context) error {
		return s.inner.Save(ctx, concern, key, data)
	}))
	switch {
	case circuitbreaker.Rejected(err):
		return unavailable(err)
	case err == nil:
		s.remember(concern, key, data)
	}
	return err
}

// Delete implements Store.
func (s *ResilientStore) Delete(ctx context.Context, concern Concern, key string) error {
	err := s.breaker.Execute(ctx, s.call(func(ctx context.Context) error {
		return s.inner.Delete(ctx, concern, key)
	}))
	if circuitbreaker.Rejected(err) {
		return unavailable(err)
	}
	s.forget(concern, key)
	return err
}

// Close implements Store.
func (s *ResilientStore) Close() error {
	return s.inner.Close()
}

// BreakerState exposes the breaker state for health reporting.
func (s *ResilientStore) BreakerState() circuitbreaker.State {
	return s.breaker.State()
}

// Ping fails while the breaker is open.
func (s *ResilientStore) Ping(context.Context) error {
	if state := s.breaker.State(); state == circuitbreaker.StateOpen {
		return fmt.Errorf("%w: breaker %s", shared.ErrStoreUnavailable, state)
	}
	return nil
}

func staleKey(concern Concern, key string) string {
	return string(concern) + "/" + key
}

func (s *ResilientStore) remember(concern Concern, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := staleKey(concern, key)
	if _, ok := s.stale[k]; !ok && len(s.stale) >= maxStaleDocuments {
		return
	}
	s.stale[k] = append([]byte(nil), data...)
}

func (s *ResilientStore) lastKnown(concern Concern, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.stale[staleKey(concern, key)]
	return append([]byte(nil), data...), ok
}

func (s *ResilientStore) forget(concern Concern, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stale, staleKey(concern, key))
}
