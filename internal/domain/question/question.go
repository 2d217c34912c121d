// Package question defines practice questions and the port through which the
// tutor obtains and grades them.
package question

import (
	"context"
	"fmt"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// Question is one practice item. Values are never mutated after creation.
type Question struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Answer     string            `json:"answer"`
	Type       shared.Topic      `json:"type"`
	Difficulty shared.Difficulty `json:"difficulty"`
	Subject    shared.Subject    `json:"subject"`
	Grade      shared.Grade      `json:"grade"`
}

// Prompt renders the question with its 1-based position, e.g. "第1题：7 × 8 = ?".
func (q Question) Prompt(position int) string {
	return fmt.Sprintf("第%d题：%s", position, q.Text)
}

// AnswerResult is the outcome of grading one attempt.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Feedback      string `json:"feedback"`
}

// Options narrows a question request. Zero values mean "no preference".
type Options struct {
	Grade      shared.Grade
	Count      int
	Topic      *shared.Topic
	Difficulty shared.Difficulty
}

// Provider supplies questions and grades answers.
type Provider interface {
	// GetQuestions returns up to opts.Count questions. Fewer are returned when
	// the pool runs out; that is not an error.
	GetQuestions(ctx context.Context, subject shared.Subject, opts Options) ([]Question, error)

	// CheckAnswer grades a raw answer. Matching is deliberately lenient.
	CheckAnswer(ctx context.Context, q Question, input string) (AnswerResult, error)
}
