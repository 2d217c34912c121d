package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("connection reset")

func fast() []Option {
	return []Option{WithInitialDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond), WithJitter(0)}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	var retried []int

	opts := append(fast(), WithMaxAttempts(3), WithOnRetry(func(attempt int, _ error, _ time.Duration) {
		retried = append(retried, attempt)
	}))
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	}, opts...)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return errTransient
	}, append(fast(), WithMaxAttempts(2))...)

	assert.Equal(t, 2, attempts)
	assert.Same(t, errTransient, err)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return Permanent(errTransient)
	}, append(fast(), WithRetryIf(func(error) bool { return true }))...)

	assert.Equal(t, 1, attempts)
	assert.Same(t, errTransient, err)
	assert.False(t, IsPermanent(err))
}

func TestDo_RetryIf(t *testing.T) {
	notFound := errors.New("document not found")
	onlyTransient := WithRetryIf(func(err error) bool { return errors.Is(err, errTransient) })

	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return notFound
	}, append(fast(), onlyTransient)...)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, notFound)

	attempts = 0
	err = Do(context.Background(), func(context.Context) error {
		attempts++
		return errTransient
	}, append(fast(), WithMaxAttempts(4), onlyTransient)...)
	assert.Equal(t, 4, attempts)
	assert.ErrorIs(t, err, errTransient)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Do(ctx, func(context.Context) error { called = true; return nil })
	assert.False(t, called)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_CancelDuringWaitReturnsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(WithInitialDelay(time.Hour), WithJitter(0), WithOnRetry(func(int, error, time.Duration) { cancel() }))

	err := r.Do(ctx, func(context.Context) error { return errTransient })
	assert.Same(t, errTransient, err)
}

func TestDelay(t *testing.T) {
	r := New(WithInitialDelay(10*time.Millisecond), WithMaxDelay(35*time.Millisecond), WithMultiplier(2), WithJitter(0))

	assert.Equal(t, 10*time.Millisecond, r.delay(1))
	assert.Equal(t, 20*time.Millisecond, r.delay(2))
	assert.Equal(t, 35*time.Millisecond, r.delay(3), "capped")

	jittered := New(WithInitialDelay(100*time.Millisecond), WithJitter(0.5))
	for i := 0; i < 20; i++ {
		d := jittered.delay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestPermanentIgnoresNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.True(t, IsPermanent(Permanent(errTransient)))
	assert.False(t, IsPermanent(errTransient))
}
