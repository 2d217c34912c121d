package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

func answerEvent() shared.Event {
	return shared.NewAnswerRecordedEvent("u1", shared.SubjectMath, shared.TopicAddition, true, "1+1=?")
}

func TestInMemoryEventBus_SyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	defer bus.Close()

	var typed, all []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventAnswerRecorded, func(_ context.Context, e shared.Event) error {
		typed = append(typed, e.EventType())
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(_ context.Context, e shared.Event) error {
		all = append(all, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), answerEvent()))
	require.NoError(t, bus.Publish(context.Background(), shared.NewQuizCompletedEvent("u1", shared.SubjectMath, 5)))

	assert.Equal(t, []shared.EventType{shared.EventAnswerRecorded}, typed)
	assert.Equal(t, []shared.EventType{shared.EventAnswerRecorded, shared.EventQuizCompleted}, all)
}

func TestInMemoryEventBus_HandlerFailureDoesNotFailPublish(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	defer bus.Close()

	var after bool
	require.NoError(t, bus.Subscribe(shared.EventAnswerRecorded, func(context.Context, shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.Subscribe(shared.EventAnswerRecorded, func(context.Context, shared.Event) error {
		panic("kaboom")
	}))
	require.NoError(t, bus.Subscribe(shared.EventAnswerRecorded, func(context.Context, shared.Event) error {
		after = true
		return nil
	}))

	assert.NoError(t, bus.Publish(context.Background(), answerEvent()))
	assert.True(t, after)

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(3), snap.TotalHandlerExecs)
	assert.Equal(t, int64(2), snap.HandlerFailures)
}

func TestInMemoryEventBus_AsyncCloseWaits(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = true
	cfg.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(cfg)

	var count atomic.Int32
	var mu sync.Mutex
	var sawCancelled bool
	require.NoError(t, bus.SubscribeAll(func(ctx context.Context, _ shared.Event) error {
		mu.Lock()
		sawCancelled = sawCancelled || ctx.Err() != nil
		mu.Unlock()
		count.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(ctx, answerEvent()))
	}
	cancel()

	require.NoError(t, bus.Close())
	assert.Equal(t, int32(10), count.Load())
	assert.False(t, sawCancelled, "async handlers must not inherit cancellation")
}

func TestInMemoryEventBus_CloseDrainsQueuedEvents(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = true
	cfg.WorkerPoolSize = 1
	bus := NewInMemoryEventBus(cfg)

	release := make(chan struct{})
	var count atomic.Int32
	require.NoError(t, bus.Subscribe(shared.EventAnswerRecorded, func(context.Context, shared.Event) error {
		<-release
		count.Add(1)
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(context.Background(), answerEvent()))
	}

	closed := make(chan struct{})
	go func() {
		_ = bus.Close()
		close(closed)
	}()

	// Close is blocked behind the queue; new events are refused meanwhile.
	require.Eventually(t, func() bool {
		return errors.Is(bus.Publish(context.Background(), answerEvent()), ErrEventBusClosed)
	}, time.Second, 5*time.Millisecond)
	select {
	case <-closed:
		t.Fatal("Close returned before queued events ran")
	default:
	}

	close(release)
	<-closed
	assert.Equal(t, int32(5), count.Load())
}

func TestInMemoryEventBus_Closed(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), answerEvent()), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(context.Context, shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestInMemoryEventBus_NilHandler(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	defer bus.Close()
	assert.ErrorIs(t, bus.Subscribe(shared.EventQuizStarted, nil), ErrNilHandler)
}
