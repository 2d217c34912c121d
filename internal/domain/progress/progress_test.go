package progress

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

func q(text, answer string) question.Question {
	return question.Question{Text: text, Answer: answer}
}

func TestProgress_New(t *testing.T) {
	p := New("u", time.Now())

	assert.Equal(t, shared.Grade(3), p.Grade)
	assert.Len(t, p.Subjects, 3)
	assert.NotNil(t, p.Subjects[shared.SubjectMath].Topics)
	assert.Equal(t, "0%", p.Summary().Accuracy)
}

func TestProgress_Record(t *testing.T) {
	now := timeutil.DateTime(2024, 3, 1, 10, 0, 0)
	p := New("u", now)

	p.Record(shared.SubjectMath, shared.TopicAddition, true, q("1+1", "2"), now)
	p.Record(shared.SubjectMath, shared.TopicAddition, false, q("2+2", "4"), now)
	p.Record(shared.SubjectEnglish, shared.TopicVocabulary, true, q("cat", "猫"), now)

	assert.Equal(t, 3, p.TotalQuestions)
	assert.Equal(t, 2, p.CorrectAnswers)
	assert.Equal(t, SubjectStats{
		Questions: 2,
		Correct:   1,
		Topics:    map[shared.Topic]TopicStats{shared.TopicAddition: {Total: 2, Correct: 1}},
	}, p.Subjects[shared.SubjectMath])

	require.Len(t, p.WrongQuestions, 1)
	assert.Equal(t, "2+2", p.WrongQuestions[0].Question)
	assert.Equal(t, "4", p.WrongQuestions[0].Answer)

	s := p.Summary()
	assert.Equal(t, "67%", s.Accuracy)
	assert.Equal(t, "1/2", s.Subjects[shared.SubjectMath])
	assert.Equal(t, "1/1", s.Subjects[shared.SubjectEnglish])
	assert.Equal(t, "0/0", s.Subjects[shared.SubjectChinese])
}

func TestProgress_RecordWithoutTopic(t *testing.T) {
	now := time.Now()
	p := New("u", now)
	p.Record(shared.SubjectChinese, "", true, q("x", "y"), now)

	assert.Empty(t, p.Subjects[shared.SubjectChinese].Topics)
	assert.Equal(t, 1, p.Subjects[shared.SubjectChinese].Questions)
}

func TestProgress_WrongBookIsBounded(t *testing.T) {
	now := time.Now()
	p := New("u", now)
	for i := 0; i < 25; i++ {
		p.Record(shared.SubjectMath, shared.TopicMixed, false, q(fmt.Sprintf("q%d", i), "a"), now)
	}

	require.Len(t, p.WrongQuestions, MaxWrongQuestions)
	assert.Equal(t, "q5", p.WrongQuestions[0].Question)

	book := p.WrongBook(DefaultWrongBookLimit)
	require.Len(t, book, 10)
	assert.Equal(t, "q15", book[0].Question)
	assert.Equal(t, "q24", book[9].Question)
}

func TestProgress_Streak(t *testing.T) {
	day1 := timeutil.DateTime(2024, 3, 1, 20, 0, 0)
	p := New("u", day1)

	p.Record(shared.SubjectMath, "", true, q("a", "b"), day1)
	assert.Equal(t, 1, p.Streak)

	p.Record(shared.SubjectMath, "", true, q("a", "b"), day1.Add(2*time.Hour))
	assert.Equal(t, 1, p.Streak, "same day does not extend")

	p.Record(shared.SubjectMath, "", true, q("a", "b"), day1.Add(24*time.Hour))
	assert.Equal(t, 2, p.Streak)

	p.Record(shared.SubjectMath, "", true, q("a", "b"), day1.Add(48*time.Hour))
	assert.Equal(t, 3, p.Streak)

	p.Record(shared.SubjectMath, "", true, q("a", "b"), day1.Add(5*24*time.Hour))
	assert.Equal(t, 1, p.Streak, "gap restarts")
}

func TestProgress_WeakPoints(t *testing.T) {
	now := time.Now()
	p := New("u", now)

	// fraction: 1/3 correct, weak
	p.Record(shared.SubjectMath, shared.TopicFraction, true, q("a", "b"), now)
	p.Record(shared.SubjectMath, shared.TopicFraction, false, q("a", "b"), now)
	p.Record(shared.SubjectMath, shared.TopicFraction, false, q("a", "b"), now)
	// grammar: 0/1, too few attempts
	p.Record(shared.SubjectEnglish, shared.TopicGrammar, false, q("a", "b"), now)
	// poetry: 0/2, weakest
	p.Record(shared.SubjectChinese, shared.TopicPoetry, false, q("a", "b"), now)
	p.Record(shared.SubjectChinese, shared.TopicPoetry, false, q("a", "b"), now)
	// decimal: 2/2, strong
	p.Record(shared.SubjectMath, shared.TopicDecimal, true, q("a", "b"), now)
	p.Record(shared.SubjectMath, shared.TopicDecimal, true, q("a", "b"), now)

	weak := p.WeakPoints()
	require.Len(t, weak, 2)
	assert.Equal(t, shared.TopicPoetry, weak[0].Topic)
	assert.Equal(t, 0, weak[0].Accuracy)
	assert.Equal(t, shared.TopicFraction, weak[1].Topic)
	assert.Equal(t, 33, weak[1].Accuracy)
}

func TestEncouragement(t *testing.T) {
	assert.Contains(t, Encouragement(95, 0), "🌟")
	assert.Contains(t, Encouragement(75, 5), "💪")
	assert.Contains(t, Encouragement(50, 3), "🔥")
	assert.Contains(t, Encouragement(50, 1), "📚")
}

func TestReport_Format(t *testing.T) {
	now := timeutil.DateTime(2024, 3, 1, 10, 0, 0)
	p := New("u", now)
	p.Record(shared.SubjectMath, shared.TopicFraction, false, q("1/2+1/4", "3/4"), now)
	p.Record(shared.SubjectMath, shared.TopicFraction, false, q("1/2+1/4", "3/4"), now)

	text := p.Report(now).Format()

	assert.Contains(t, text, "📊 学习报告")
	assert.Contains(t, text, "2024年3月1日")
	assert.Contains(t, text, "正确率：0%")
	assert.Contains(t, text, "数学：0/2")
	assert.Contains(t, text, "分数：0%")
	assert.Contains(t, text, "错题本里有2道题")
}

func TestFormatWrongBook(t *testing.T) {
	assert.Contains(t, FormatWrongBook(nil), "错题本是空的")

	text := FormatWrongBook([]WrongQuestion{{Question: "7 × 8 = ?", Answer: "56", Subject: shared.SubjectMath}})
	assert.Contains(t, text, "1. [数学] 7 × 8 = ?")
	assert.Contains(t, text, "正确答案：56")
}

func TestProgress_CloneIsDeep(t *testing.T) {
	now := time.Now()
	p := New("u", now)
	p.Record(shared.SubjectMath, shared.TopicMixed, false, q("a", "b"), now)

	c := p.Clone()
	c.Record(shared.SubjectMath, shared.TopicMixed, false, q("c", "d"), now)

	assert.Equal(t, 1, p.Subjects[shared.SubjectMath].Topics[shared.TopicMixed].Total)
	assert.Len(t, p.WrongQuestions, 1)
	assert.Equal(t, 2, c.Subjects[shared.SubjectMath].Topics[shared.TopicMixed].Total)
	assert.Equal(t, 1, p.Day(now).Questions)
	assert.Equal(t, 2, c.Day(now).Questions)
}

func TestProgress_Normalize(t *testing.T) {
	p := &Progress{}
	p.Normalize("u")

	assert.Equal(t, "u", p.UserID)
	assert.Equal(t, shared.DefaultGrade, p.Grade)
	assert.Len(t, p.Subjects, 3)
	assert.NotNil(t, p.WrongQuestions)
	assert.NotNil(t, p.Days)
}
