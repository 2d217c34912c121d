// Package session holds the per-user dialogue state: the student's grade and
// subject, a bounded conversation history and the active question session.
package session

import (
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// DefaultUserID is used for turns that arrive without a user id.
const DefaultUserID = "default"

// DefaultMaxHistory bounds the conversation history per user.
const DefaultMaxHistory = 20

// DefaultIdleTTL is the default eviction threshold for untouched sessions.
const DefaultIdleTTL = 24 * time.Hour

// HistoryEntry is one message in the conversation history.
type HistoryEntry struct {
	ID        string      `json:"id"`
	Role      shared.Role `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// QuizState tracks an active question session.
//
// Invariants: 0 <= CurrentQuestionIndex <= len(Questions), and an active
// session always has at least one question.
type QuizState struct {
	InQuestionSession    bool                `json:"in_question_session"`
	Questions            []question.Question `json:"questions,omitempty"`
	CurrentQuestionIndex int                 `json:"current_question_index"`
}

// Session is the dialogue state of one user.
type Session struct {
	UserID       string          `json:"user_id"`
	Subject      *shared.Subject `json:"subject,omitempty"`
	Grade        shared.Grade    `json:"grade"`
	Topic        *shared.Topic   `json:"topic,omitempty"`
	History      []HistoryEntry  `json:"history"`
	State        QuizState       `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActiveAt time.Time       `json:"last_active_at"`
}

// New creates a default session for a user.
func New(userID string, grade shared.Grade, now time.Time) Session {
	return Session{
		UserID:       userID,
		Grade:        grade,
		History:      []HistoryEntry{},
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Clone returns a deep copy. Questions are immutable values, so a fresh
// backing array is enough.
func (s Session) Clone() Session {
	out := s
	if s.Subject != nil {
		v := *s.Subject
		out.Subject = &v
	}
	if s.Topic != nil {
		v := *s.Topic
		out.Topic = &v
	}
	out.History = append([]HistoryEntry(nil), s.History...)
	if out.History == nil {
		out.History = []HistoryEntry{}
	}
	if s.State.Questions != nil {
		out.State.Questions = append([]question.Question(nil), s.State.Questions...)
	}
	return out
}

// InQuiz reports whether a question session is active.
func (s Session) InQuiz() bool {
	return s.State.InQuestionSession
}

// CurrentQuestion returns the question under the cursor.
func (s Session) CurrentQuestion() (question.Question, error) {
	if !s.State.InQuestionSession {
		return question.Question{}, shared.ErrQuizNotActive
	}
	i := s.State.CurrentQuestionIndex
	if i < 0 || i >= len(s.State.Questions) {
		return question.Question{}, shared.ErrQuizCursorBroken
	}
	return s.State.Questions[i], nil
}

// StartQuiz enters IN_QUIZ with the cursor on the first question.
// An empty list leaves the session idle.
func (s *Session) StartQuiz(qs []question.Question) {
	if len(qs) == 0 {
		s.ResetQuiz()
		return
	}
	s.State = QuizState{
		InQuestionSession:    true,
		Questions:            append([]question.Question(nil), qs...),
		CurrentQuestionIndex: 0,
	}
}

// Advance moves the cursor past a correctly answered question. When the list
// is exhausted the quiz resets to idle in the same step and Advance returns true.
func (s *Session) Advance() (finished bool) {
	s.State.CurrentQuestionIndex++
	if s.State.CurrentQuestionIndex >= len(s.State.Questions) {
		s.ResetQuiz()
		return true
	}
	return false
}

// ResetQuiz returns to IDLE.
func (s *Session) ResetQuiz() {
	s.State = QuizState{}
}

// Remaining returns how many questions are left including the current one.
func (s Session) Remaining() int {
	if !s.State.InQuestionSession {
		return 0
	}
	return len(s.State.Questions) - s.State.CurrentQuestionIndex
}

// Validate checks the quiz invariants.
func (s Session) Validate() error {
	st := s.State
	if st.CurrentQuestionIndex < 0 || st.CurrentQuestionIndex > len(st.Questions) {
		return shared.ErrQuizCursorBroken
	}
	if st.InQuestionSession && len(st.Questions) == 0 {
		return shared.WrapError("session", "Validate", shared.ErrInvalidState,
			"active question session without questions", shared.ErrQuizCursorBroken)
	}
	if st.InQuestionSession && st.CurrentQuestionIndex == len(st.Questions) {
		// An exhausted list must already have been reset to idle.
		return shared.WrapError("session", "Validate", shared.ErrInvalidState,
			"active question session past its last question", shared.ErrQuizCursorBroken)
	}
	return nil
}

// appendHistory adds an entry and drops the oldest ones beyond max.
func (s *Session) appendHistory(e HistoryEntry, max int) {
	s.History = append(s.History, e)
	if max > 0 && len(s.History) > max {
		s.History = append([]HistoryEntry(nil), s.History[len(s.History)-max:]...)
	}
}

// Summary is a compact, read-only view of a session.
type Summary struct {
	UserID       string    `json:"user_id"`
	Subject      string    `json:"subject,omitempty"`
	Grade        int       `json:"grade"`
	Topic        string    `json:"topic,omitempty"`
	MessageCount int       `json:"message_count"`
	InQuiz       bool      `json:"in_quiz"`
	Remaining    int       `json:"remaining_questions"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// Summarize builds a Summary.
func (s Session) Summarize() Summary {
	sum := Summary{
		UserID:       s.UserID,
		Grade:        s.Grade.Int(),
		MessageCount: len(s.History),
		InQuiz:       s.State.InQuestionSession,
		Remaining:    s.Remaining(),
		LastActiveAt: s.LastActiveAt,
	}
	if s.Subject != nil {
		sum.Subject = s.Subject.String()
	}
	if s.Topic != nil {
		sum.Topic = s.Topic.String()
	}
	return sum
}
