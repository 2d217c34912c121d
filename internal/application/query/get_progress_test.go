package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

type stubProgressRepo struct {
	p   *progress.Progress
	err error
}

func (r stubProgressRepo) Get(_ context.Context, userID string) (*progress.Progress, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.p == nil {
		return progress.New(userID, time.Time{}), nil
	}
	return r.p, nil
}

func (stubProgressRepo) Save(context.Context, *progress.Progress) error { return nil }

func TestGetProgress_Empty(t *testing.T) {
	h := NewGetProgressHandler(stubProgressRepo{}, nil)

	view, err := h.Handle(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", view.Summary.UserID)
	assert.Equal(t, "0%", view.Summary.Accuracy)
	assert.Empty(t, view.WeakPoints)
	assert.NotNil(t, view.WeakPoints)
	assert.Empty(t, view.WrongBook)
	assert.Empty(t, view.Achievements)
	assert.Contains(t, view.NextGoal, "十题达人")
	assert.Contains(t, view.Report, "📊 学习报告")
}

func TestGetProgress_WithAnswers(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	p := progress.New("u1", now)
	q := question.Question{Text: "3×4=?", Answer: "12", Type: shared.TopicMultiplication, Subject: shared.SubjectMath}
	p.Record(shared.SubjectMath, shared.TopicMultiplication, true, q, now)
	p.Record(shared.SubjectMath, shared.TopicMultiplication, false, q, now)
	p.Record(shared.SubjectMath, shared.TopicMultiplication, false, q, now)

	h := NewGetProgressHandler(stubProgressRepo{p: p}, func() time.Time { return now })
	view, err := h.Handle(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "33%", view.Summary.Accuracy)
	assert.Equal(t, "1/3", view.Summary.Subjects[shared.SubjectMath])
	require.Len(t, view.WeakPoints, 1)
	assert.Equal(t, shared.TopicMultiplication, view.WeakPoints[0].Topic)
	assert.Len(t, view.WrongBook, 2)
	assert.Contains(t, view.Achievements, "first_question")
	assert.Contains(t, view.Suggestions, "   重点复习：乘法")
	assert.Equal(t, now, view.AsOf)
}

func TestGetProgress_Errors(t *testing.T) {
	h := NewGetProgressHandler(stubProgressRepo{err: shared.ErrStoreUnavailable}, nil)

	_, err := h.Handle(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrEmptyUserID)

	_, err = h.Handle(context.Background(), "u1")
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
	assert.True(t, shared.IsRetryable(err))
}
