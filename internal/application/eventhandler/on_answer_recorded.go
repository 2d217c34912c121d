// Package eventhandler contains handlers for domain events.
package eventhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/pet"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/domain/tasks"
	"github.com/xuexi-helper/study-helper/internal/domain/team"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON ANSWER RECORDED HANDLER
// Applies the gamification side effects of one recorded answer:
// 1. Daily tasks: one more question for the subject.
// 2. Learning pet: study interaction (experience, mood, level).
// 3. Team: member and team counters, team points.
//
// Each step is independent; a failing step is logged and the rest still run.
// ══════════════════════════════════════════════════════════════════════════════

// OnAnswerRecordedHandler handles AnswerRecordedEvent.
type OnAnswerRecordedHandler struct {
	tasksRepo tasks.Repository
	petRepo   pet.Repository
	teamRepo  team.Repository

	features shared.FeatureGate
	clock    func() time.Time
	logger   *slog.Logger
}

// NewOnAnswerRecordedHandler creates the handler. Any repository may be nil
// to skip that side effect; a nil gate enables everything.
func NewOnAnswerRecordedHandler(
	tasksRepo tasks.Repository,
	petRepo pet.Repository,
	teamRepo team.Repository,
	features shared.FeatureGate,
	clock func() time.Time,
	logger *slog.Logger,
) *OnAnswerRecordedHandler {
	if features == nil {
		features = shared.AllFeatures{}
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OnAnswerRecordedHandler{
		tasksRepo: tasksRepo,
		petRepo:   petRepo,
		teamRepo:  teamRepo,
		features:  features,
		clock:     clock,
		logger:    logger.With("handler", "on_answer_recorded"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnAnswerRecordedHandler) Handle(ctx context.Context, event shared.Event) error {
	answer, ok := event.(shared.AnswerRecordedEvent)
	if !ok {
		h.logger.Warn("received non-AnswerRecordedEvent", "event_type", event.EventType())
		return nil
	}

	now := h.clock()
	var errs []error

	if h.tasksRepo != nil && h.features.IsEnabledFor(shared.FeatureDailyTasks, answer.UserID) {
		if err := h.updateTasks(ctx, answer, now); err != nil {
			h.logger.Error("failed to update daily tasks", "user_id", answer.UserID, "error", err)
			errs = append(errs, err)
		}
	}

	if h.petRepo != nil && h.features.IsEnabledFor(shared.FeaturePet, answer.UserID) {
		if err := h.updatePet(ctx, answer, now); err != nil {
			h.logger.Error("failed to update pet", "user_id", answer.UserID, "error", err)
			errs = append(errs, err)
		}
	}

	if h.teamRepo != nil && h.features.IsEnabledFor(shared.FeatureTeam, answer.UserID) {
		if err := h.updateTeam(ctx, answer, now); err != nil {
			h.logger.Error("failed to update team", "user_id", answer.UserID, "error", err)
			errs = append(errs, err)
		}
	}

	h.logger.Debug("answer side effects applied",
		"user_id", answer.UserID,
		"subject", answer.Subject,
		"correct", answer.Correct,
		"failures", len(errs),
	)

	return errors.Join(errs...)
}

func (h *OnAnswerRecordedHandler) updateTasks(ctx context.Context, e shared.AnswerRecordedEvent, now time.Time) error {
	t, err := h.tasksRepo.Get(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	res := t.Record(e.Subject, 1, now)
	if res.DayComplete {
		h.logger.Info("daily tasks completed", "user_id", e.UserID, "streak", t.Streak)
	}

	if err := h.tasksRepo.Save(ctx, t); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (h *OnAnswerRecordedHandler) updatePet(ctx context.Context, e shared.AnswerRecordedEvent, now time.Time) error {
	p, err := h.petRepo.Get(ctx, e.UserID)
	if shared.IsNotFound(err) {
		// No pet adopted yet.
		return nil
	}
	if err != nil {
		return fmt.Errorf("load pet: %w", err)
	}

	p.StudyInteraction(now)

	if err := h.petRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("save pet: %w", err)
	}
	return nil
}

func (h *OnAnswerRecordedHandler) updateTeam(ctx context.Context, e shared.AnswerRecordedEvent, now time.Time) error {
	m, err := h.teamRepo.Membership(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("load membership: %w", err)
	}
	if !m.InTeam() {
		return nil
	}

	t, err := h.teamRepo.Team(ctx, m.TeamCode)
	if errors.Is(err, shared.ErrTeamNotFound) {
		// Dangling pointer to a team that no longer exists.
		h.logger.Warn("membership points to missing team", "user_id", e.UserID, "team_code", m.TeamCode)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load team: %w", err)
	}

	t.RecordAnswer(e.UserID, e.Correct, now)

	if err := h.teamRepo.SaveTeam(ctx, t); err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}
