// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/achievement"
	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Reads the learning ledger of one student together with the views built
// on top of it: summary, weak points, wrong-question book, badges and advice.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressView is the read model returned by GetProgressHandler.
type ProgressView struct {
	// Progress is the raw ledger.
	Progress *progress.Progress `json:"-"`

	Summary      progress.Summary         `json:"summary"`
	WeakPoints   []progress.WeakPoint     `json:"weak_points"`
	WrongBook    []progress.WrongQuestion `json:"wrong_book"`
	Achievements []string                 `json:"achievements"`

	// NextGoal hints at the closest badge.
	NextGoal    string   `json:"next_goal"`
	Suggestions []string `json:"suggestions"`

	// Report is the formatted progress report shown in chat.
	Report string `json:"report"`

	// AsOf is the clock reading the view was built at.
	AsOf time.Time `json:"as_of"`
}

// GetProgressHandler handles progress reads.
type GetProgressHandler struct {
	repo  progress.Repository
	clock func() time.Time
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(repo progress.Repository, clock func() time.Time) *GetProgressHandler {
	if clock == nil {
		clock = time.Now
	}
	return &GetProgressHandler{repo: repo, clock: clock}
}

// Handle returns the ledger view for userID. A user with no stored ledger
// gets an empty one.
func (h *GetProgressHandler) Handle(ctx context.Context, userID string) (*ProgressView, error) {
	if userID == "" {
		return nil, shared.ErrEmptyUserID
	}

	p, err := h.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_progress: %w", err)
	}

	weak := p.WeakPoints()
	if weak == nil {
		weak = []progress.WeakPoint{}
	}
	now := h.clock()
	earned := lo.Map(achievement.Unlocked(p), func(a achievement.Achievement, _ int) string { return a.ID })

	return &ProgressView{
		Progress:     p,
		Summary:      p.Summary(),
		WeakPoints:   weak,
		WrongBook:    p.WrongBook(progress.DefaultWrongBookLimit),
		Achievements: earned,
		NextGoal:     achievement.NextGoal(p),
		Suggestions:  p.Suggestions(),
		Report:       p.Report(now).Format(),
		AsOf:         now,
	}, nil
}
