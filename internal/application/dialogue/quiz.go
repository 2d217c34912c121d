package dialogue

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/application/command"
	"github.com/xuexi-helper/study-helper/internal/domain/achievement"
	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ
// IDLE --generate_questions--> IN_QUIZ(cursor=0)
// IN_QUIZ --correct, more left--> IN_QUIZ(cursor+1)
// IN_QUIZ --correct, last--> IDLE
// IN_QUIZ --incorrect--> IN_QUIZ(same cursor)
// ══════════════════════════════════════════════════════════════════════════════

// startQuiz fetches questions and enters IN_QUIZ. A provider error aborts the
// turn before the session changes.
func (r *Router) startQuiz(t *turn) ([]string, error) {
	subject := shared.SubjectMath
	if t.sess.Subject != nil {
		subject = *t.sess.Subject
	}
	grade := t.sess.Grade

	qs, err := r.questions.GetQuestions(t.ctx, subject, question.Options{
		Grade:      grade,
		Count:      t.cls.QuestionCount,
		Topic:      t.cls.Topic,
		Difficulty: r.adaptiveDifficulty(t, subject),
	})
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	return r.beginQuiz(t, subject, qs), nil
}

// beginQuiz enters IN_QUIZ with qs, or stays idle when there are none.
func (r *Router) beginQuiz(t *turn, subject shared.Subject, qs []question.Question) []string {
	grade := t.sess.Grade
	if len(qs) == 0 {
		return []string{noQuestionsText(subject, grade)}
	}

	t.sess.StartQuiz(qs)
	r.publish(t, shared.NewQuizStartedEvent(t.userID, subject, grade, len(qs)))

	return []string{quizIntro(subject, grade, qs), qs[0].Prompt(1)}
}

// adaptiveDifficulty reads the preferred difficulty off the ledger. A ledger
// that cannot be read only costs the preference.
func (r *Router) adaptiveDifficulty(t *turn, subject shared.Subject) shared.Difficulty {
	p, err := r.loadProgress(t)
	if err != nil {
		r.logger.Warn("adaptive difficulty unavailable", "user_id", t.userID, "error", err)
		return ""
	}
	return p.DifficultyFor(subject, t.cls.Topic)
}

// ══════════════════════════════════════════════════════════════════════════════
// Wrong-book review
// Easy questions on the topics of recent mistakes, topped up with easy
// questions of any topic.
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) startReview(t *turn) ([]string, error) {
	if t.sess.InQuiz() {
		q, err := t.sess.CurrentQuestion()
		if err != nil {
			return nil, err
		}
		return []string{"先把这组题做完再复习错题吧～\n\n" + q.Prompt(t.sess.State.CurrentQuestionIndex+1)}, nil
	}

	p, err := r.loadProgress(t)
	if err != nil {
		return nil, err
	}

	subject, ok := p.LatestWrongSubject()
	switch {
	case t.cls.Subject != nil:
		subject, ok = *t.cls.Subject, true
	case t.sess.Subject != nil:
		subject, ok = *t.sess.Subject, true
	}
	if !ok {
		return []string{"错题本是空的，太棒了！想做新题就说\"出5道数学题\"～"}, nil
	}

	topics := p.ReviewTopics(subject)
	if len(topics) == 0 {
		return []string{fmt.Sprintf("之前没有做错%s题哦！想做新题就说\"出5道%s题\"～", subject.DisplayName(), subject.DisplayName())}, nil
	}

	count := t.cls.QuestionCount
	perTopic := (count + len(topics) - 1) / len(topics)
	var qs []question.Question
	for _, topic := range topics {
		got, err := r.questions.GetQuestions(t.ctx, subject, question.Options{
			Grade:      t.sess.Grade,
			Count:      perTopic,
			Topic:      &topic,
			Difficulty: shared.DifficultyEasy,
		})
		if err != nil {
			return nil, fmt.Errorf("get review questions: %w", err)
		}
		qs = append(qs, got...)
	}
	if len(qs) < count {
		more, err := r.questions.GetQuestions(t.ctx, subject, question.Options{
			Grade:      t.sess.Grade,
			Count:      count - len(qs),
			Difficulty: shared.DifficultyEasy,
		})
		if err != nil {
			return nil, fmt.Errorf("get review questions: %w", err)
		}
		qs = append(qs, more...)
	}
	qs = lo.UniqBy(qs, func(q question.Question) string { return q.Text })
	if len(qs) > count {
		qs = qs[:count]
	}

	t.sess.Subject = &subject
	names := lo.Map(topics, func(topic shared.Topic, _ int) string { return topic.DisplayName() })
	intro := "📚 根据你的错题记录，重点练习这些知识点：" + strings.Join(names, "、")
	return append([]string{intro}, r.beginQuiz(t, subject, qs)...), nil
}

// answerQuiz grades text against the question under the cursor and records
// exactly one answer in the progress ledger.
func (r *Router) answerQuiz(t *turn) ([]string, error) {
	q, err := t.sess.CurrentQuestion()
	if err != nil {
		return nil, err
	}
	position := t.sess.State.CurrentQuestionIndex + 1
	total := len(t.sess.State.Questions)

	res, err := r.questions.CheckAnswer(t.ctx, q, t.text)
	if err != nil {
		return nil, fmt.Errorf("check answer: %w", err)
	}

	rec, err := r.recorder.Handle(t.ctx, command.RecordAnswerCommand{
		UserID:   t.userID,
		Subject:  q.Subject,
		Topic:    q.Type,
		Grade:    t.sess.Grade,
		Correct:  res.Correct,
		Question: q,
	})
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	if !res.Correct {
		return []string{incorrectFeedback(res, q, position)}, nil
	}

	out := []string{correctFeedback(res)}
	if r.features.IsEnabledFor(shared.FeatureAchievements, t.userID) {
		for _, a := range rec.NewAchievements {
			out = append(out, achievement.Celebrate(a))
		}
	}

	if finished := t.sess.Advance(); finished {
		r.publish(t, shared.NewQuizCompletedEvent(t.userID, q.Subject, total))
		return append(out, completionText(total), achievement.NextGoal(rec.After)), nil
	}

	next := t.sess.State.Questions[t.sess.State.CurrentQuestionIndex]
	return append(out, next.Prompt(t.sess.State.CurrentQuestionIndex+1)), nil
}

func (r *Router) publish(t *turn, e shared.Event) {
	if err := r.publisher.Publish(t.ctx, e); err != nil {
		r.logger.Warn("failed to publish event",
			"event_type", e.EventType(),
			"user_id", t.userID,
			"error", err,
		)
	}
}
