package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	delay time.Duration
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts runs" }
func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
		}
	}
	return j.err
}

type panicJob struct{}

func (panicJob) Name() string              { return "panic" }
func (panicJob) Description() string       { return "panics" }
func (panicJob) Run(context.Context) error { panic("boom") }

func newTestScheduler() *Scheduler {
	cfg := DefaultSchedulerConfig()
	cfg.TickInterval = 5 * time.Millisecond
	return NewScheduler(cfg)
}

func TestScheduler_RunsDueJobs(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "tick"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(10*time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return job.runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())

	infos := s.ListJobs()
	require.Len(t, infos, 1)
	assert.Equal(t, "tick", infos[0].Name)
	assert.Equal(t, "@every 10ms", infos[0].Schedule)
	assert.GreaterOrEqual(t, infos[0].RunCount, int64(3))
}

func TestScheduler_NoOverlap(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "slow", delay: 200 * time.Millisecond}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())
	require.NoError(t, s.Stop())
}

func TestScheduler_RegisterErrors(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "dup"}

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Second)), ErrNilJob)
	assert.ErrorIs(t, s.Register(job, nil), ErrNilSchedule)
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Second)))
	assert.ErrorIs(t, s.Register(job, NewIntervalSchedule(time.Second)), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.DisableJob("missing"), ErrJobNotFound)
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := newTestScheduler()
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunNow(t *testing.T) {
	s := newTestScheduler()
	failing := &countingJob{name: "failing", err: errors.New("nope")}
	require.NoError(t, s.Register(failing, NewIntervalSchedule(time.Hour)))
	require.NoError(t, s.Register(panicJob{}, NewIntervalSchedule(time.Hour)))

	res, err := s.RunNow(context.Background(), "failing")
	assert.Error(t, err)
	assert.False(t, res.Success)

	_, err = s.RunNow(context.Background(), "panic")
	assert.ErrorIs(t, err, ErrJobPanic)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	snap := s.GetMetrics().Snapshot()
	assert.Equal(t, int64(2), snap.TotalExecutions)
	assert.Equal(t, int64(2), snap.TotalFailures)
}

func TestIntervalSchedule(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(5*time.Minute), NewIntervalSchedule(5*time.Minute).Next(at))
	assert.Equal(t, time.Minute, NewIntervalSchedule(0).Interval)
}
