// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/achievement"
	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ANSWER COMMAND
// Adds one graded answer to the student's progress ledger. Tasks, pet and
// team react to the published AnswerRecordedEvent.
// ══════════════════════════════════════════════════════════════════════════════

// RecordAnswerCommand contains one graded answer.
type RecordAnswerCommand struct {
	// UserID is the student.
	UserID string

	// Subject of the question.
	Subject shared.Subject

	// Topic overrides Question.Type when set.
	Topic shared.Topic

	// Grade is the session grade; recorded on the ledger when supported.
	Grade shared.Grade

	// Correct is the grading outcome.
	Correct bool

	// Question is the answered question; wrong answers go to the wrong book.
	Question question.Question
}

// Validate validates the command.
func (c RecordAnswerCommand) Validate() error {
	if c.UserID == "" {
		return shared.ErrEmptyUserID
	}
	if !c.Subject.IsValid() {
		return fmt.Errorf("record_answer: %w: %q", shared.ErrUnknownSubject, c.Subject)
	}
	return nil
}

func (c RecordAnswerCommand) topic() shared.Topic {
	if c.Topic != "" {
		return c.Topic
	}
	return c.Question.Type
}

// RecordAnswerResult carries the ledger before and after the answer.
type RecordAnswerResult struct {
	Before *progress.Progress
	After  *progress.Progress

	// NewAchievements are badges earned by this answer.
	NewAchievements []achievement.Achievement
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordAnswerHandler handles the RecordAnswerCommand.
type RecordAnswerHandler struct {
	repo      progress.Repository
	publisher shared.EventPublisher
	clock     func() time.Time
	logger    *slog.Logger
}

// NewRecordAnswerHandler creates a new RecordAnswerHandler. publisher and
// clock may be nil.
func NewRecordAnswerHandler(repo progress.Repository, publisher shared.EventPublisher, clock func() time.Time, logger *slog.Logger) *RecordAnswerHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordAnswerHandler{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("handler", "record_answer"),
	}
}

// Handle records the answer, saves the ledger and publishes the events.
// A failed publish is logged; the answer stays recorded.
func (h *RecordAnswerHandler) Handle(ctx context.Context, cmd RecordAnswerCommand) (*RecordAnswerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.repo.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("record_answer: load progress: %w", err)
	}
	before := p.Clone()

	if cmd.Grade.IsSupported() {
		p.Grade = cmd.Grade
	}
	p.Record(cmd.Subject, cmd.topic(), cmd.Correct, cmd.Question, h.clock())

	if err := h.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("record_answer: save progress: %w", err)
	}

	result := &RecordAnswerResult{
		Before:          before,
		After:           p,
		NewAchievements: achievement.NewlyUnlocked(before, p),
	}

	events := []shared.Event{
		shared.NewAnswerRecordedEvent(cmd.UserID, cmd.Subject, cmd.topic(), cmd.Correct, cmd.Question.Text),
	}
	for _, a := range result.NewAchievements {
		events = append(events, shared.NewAchievementUnlockedEvent(cmd.UserID, a.ID, a.Name))
	}
	for _, e := range events {
		if err := h.publisher.Publish(ctx, e); err != nil {
			h.logger.Warn("failed to publish event",
				"event_type", e.EventType(),
				"user_id", cmd.UserID,
				"error", err,
			)
		}
	}

	return result, nil
}
