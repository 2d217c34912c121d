// Package jobs contains the scheduled maintenance jobs.
package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVICT IDLE SESSIONS JOB
// ══════════════════════════════════════════════════════════════════════════════

// SessionEvicter is the part of the session store the job needs.
type SessionEvicter interface {
	EvictIdle(maxAge time.Duration) int
	Len() int
}

// EvictIdleSessionsJob drops dialogue sessions that have been idle longer
// than MaxAge so memory stays bounded by active users.
type EvictIdleSessionsJob struct {
	sessions  SessionEvicter
	publisher shared.EventPublisher
	maxAge    time.Duration
	logger    *slog.Logger

	lastEvicted  atomic.Int64
	totalEvicted atomic.Int64
}

// NewEvictIdleSessionsJob creates the job. publisher may be nil.
func NewEvictIdleSessionsJob(sessions SessionEvicter, publisher shared.EventPublisher, maxAge time.Duration, logger *slog.Logger) *EvictIdleSessionsJob {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EvictIdleSessionsJob{
		sessions:  sessions,
		publisher: publisher,
		maxAge:    maxAge,
		logger:    logger.With("job", "evict_idle_sessions"),
	}
}

// Name implements scheduler.Job.
func (j *EvictIdleSessionsJob) Name() string { return "evict_idle_sessions" }

// Description implements scheduler.Job.
func (j *EvictIdleSessionsJob) Description() string {
	return "Remove dialogue sessions idle for longer than " + j.maxAge.String()
}

// Run implements scheduler.Job.
func (j *EvictIdleSessionsJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	evicted := j.sessions.EvictIdle(j.maxAge)
	j.lastEvicted.Store(int64(evicted))
	j.totalEvicted.Add(int64(evicted))

	if evicted == 0 {
		return nil
	}

	j.logger.Debug("sessions evicted", "evicted", evicted, "remaining", j.sessions.Len())
	return j.publisher.Publish(ctx, shared.NewSessionsEvictedEvent(evicted, j.maxAge))
}

// Stats returns the eviction count of the last run and of all runs.
func (j *EvictIdleSessionsJob) Stats() (last, total int64) {
	return j.lastEvicted.Load(), j.totalEvicted.Load()
}
