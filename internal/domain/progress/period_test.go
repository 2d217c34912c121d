package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

// studyWeek records answers on Feb 20 and on Mar 4, 5 and 6 2024.
func studyWeek() *Progress {
	p := New("u", timeutil.Date(2024, 2, 1))
	at := func(month, day int) func(subject shared.Subject, correct bool) {
		return func(subject shared.Subject, correct bool) {
			p.Record(subject, shared.TopicMixed, correct, q("x", "y"), timeutil.DateTime(2024, month, day, 19, 0, 0))
		}
	}

	at(2, 20)(shared.SubjectMath, true)
	at(3, 4)(shared.SubjectMath, true)
	at(3, 4)(shared.SubjectMath, true)
	at(3, 5)(shared.SubjectChinese, false)
	at(3, 6)(shared.SubjectEnglish, true)
	at(3, 6)(shared.SubjectEnglish, true)
	at(3, 6)(shared.SubjectEnglish, false)
	return p
}

func TestProgress_RecordCountsDays(t *testing.T) {
	p := studyWeek()

	day := p.Day(timeutil.DateTime(2024, 3, 6, 8, 0, 0))
	assert.Equal(t, 3, day.Questions)
	assert.Equal(t, 2, day.Correct)
	assert.Equal(t, 3, day.Subjects[shared.SubjectEnglish])
	assert.Len(t, p.Days, 4)

	// Forty days on, everything older than the tracked window is gone.
	later := timeutil.DateTime(2024, 4, 15, 10, 0, 0)
	p.Record(shared.SubjectMath, "", true, q("a", "b"), later)
	require.Len(t, p.Days, 1)
	assert.Equal(t, 1, p.Day(later).Questions)
}

func TestProgress_PeriodReport(t *testing.T) {
	p := studyWeek()
	now := timeutil.DateTime(2024, 3, 6, 21, 0, 0)

	t.Run("day", func(t *testing.T) {
		r := p.PeriodReport(SpanDay, now)
		assert.Equal(t, 3, r.TotalQuestions)
		assert.Equal(t, 67, r.Accuracy)

		text := r.Format()
		assert.Contains(t, text, "今日学习报告")
		assert.Contains(t, text, "预计用时：6分钟")
		assert.Contains(t, text, "💪 继续加油！")
		assert.Contains(t, text, "🔥 连续学习：3天")
		assert.Contains(t, text, "今天数学练习有点少")
	})

	t.Run("week", func(t *testing.T) {
		r := p.PeriodReport(SpanWeek, now)
		require.Len(t, r.Days, 7)
		assert.Equal(t, 6, r.TotalQuestions)
		assert.Equal(t, 4, r.CorrectAnswers)
		assert.Equal(t, 3, r.StudyDays)
		assert.Equal(t, 3, r.LongestStreak)
		assert.Equal(t, 1, r.AveragePerDay)
		assert.Equal(t, map[shared.Subject]int{
			shared.SubjectMath:    2,
			shared.SubjectChinese: 1,
			shared.SubjectEnglish: 3,
		}, r.Subjects)

		best, ok := r.BestDay()
		require.True(t, ok)
		assert.Equal(t, 6, best.Date.Day())

		text := r.Format()
		assert.Contains(t, text, "周学习报告")
		assert.Contains(t, text, "2/29 - 3/6")
		assert.Contains(t, text, "🏆 最佳日：周三（3题）")
		assert.Contains(t, text, "这周学习天数有点少")
	})

	t.Run("month", func(t *testing.T) {
		r := p.PeriodReport(SpanMonth, now)
		assert.Equal(t, 7, r.TotalQuestions)
		assert.Equal(t, 4, r.StudyDays)

		text := r.Format()
		assert.Contains(t, text, "月学习报告")
		assert.Contains(t, text, "进度：2%")
		assert.Contains(t, text, "剩余：293题")
	})

	t.Run("empty ledger", func(t *testing.T) {
		r := New("u", now).PeriodReport(SpanWeek, now)
		_, ok := r.BestDay()
		assert.False(t, ok)
		assert.Equal(t, []string{"还没有开始学习，快来试试吧！"}, r.Suggestions)
	})
}

func TestParseSpan(t *testing.T) {
	s, ok := ParseSpan(" Week ")
	assert.True(t, ok)
	assert.Equal(t, SpanWeek, s)

	_, ok = ParseSpan("year")
	assert.False(t, ok)
}

func TestProgress_DifficultyFor(t *testing.T) {
	now := timeutil.DateTime(2024, 3, 1, 10, 0, 0)
	p := New("u", now)
	fraction := shared.TopicFraction

	assert.Empty(t, p.DifficultyFor(shared.SubjectMath, &fraction), "nothing recorded yet")

	for i := 0; i < 3; i++ {
		p.Record(shared.SubjectMath, fraction, true, q("a", "b"), now)
	}
	assert.Equal(t, shared.DifficultyHard, p.DifficultyFor(shared.SubjectMath, &fraction))

	p.Record(shared.SubjectMath, fraction, false, q("a", "b"), now)
	p.Record(shared.SubjectMath, fraction, false, q("a", "b"), now)
	assert.Equal(t, shared.DifficultyMedium, p.DifficultyFor(shared.SubjectMath, &fraction), "3/5 is 60%")

	// Too few topic answers fall back to the subject, which needs ten.
	decimal := shared.TopicDecimal
	assert.Empty(t, p.DifficultyFor(shared.SubjectMath, &decimal))
	for i := 0; i < 5; i++ {
		p.Record(shared.SubjectMath, "", false, q("a", "b"), now)
	}
	assert.Equal(t, shared.DifficultyEasy, p.DifficultyFor(shared.SubjectMath, &decimal), "3/10 overall")
	assert.Equal(t, shared.DifficultyEasy, p.DifficultyFor(shared.SubjectMath, nil))
}

func TestProgress_ReviewTopics(t *testing.T) {
	now := timeutil.DateTime(2024, 3, 1, 10, 0, 0)
	p := New("u", now)
	for _, topic := range []shared.Topic{shared.TopicAddition, shared.TopicFraction, shared.TopicAddition, shared.TopicDecimal, shared.TopicMultiplication} {
		p.Record(shared.SubjectMath, topic, false, q("a", "b"), now)
	}
	p.Record(shared.SubjectEnglish, shared.TopicVocabulary, false, q("cat", "猫"), now)

	assert.Equal(t, []shared.Topic{shared.TopicMultiplication, shared.TopicDecimal, shared.TopicAddition}, p.ReviewTopics(shared.SubjectMath))
	assert.Equal(t, []shared.Topic{shared.TopicVocabulary}, p.ReviewTopics(shared.SubjectEnglish))
	assert.Empty(t, p.ReviewTopics(shared.SubjectChinese))

	subject, ok := p.LatestWrongSubject()
	assert.True(t, ok)
	assert.Equal(t, shared.SubjectEnglish, subject)
	assert.Equal(t, shared.TopicAddition, p.WrongQuestions[0].Topic, "the book itself is not reordered")
}

func TestProgress_Suggestions(t *testing.T) {
	now := timeutil.DateTime(2024, 3, 1, 10, 0, 0)
	p := New("u", now)
	fresh := p.Suggestions()
	require.Len(t, fresh, 3)
	assert.Contains(t, fresh[0], "数学：还没开始学习")

	p.Record(shared.SubjectMath, shared.TopicFraction, true, q("a", "b"), now)
	p.Record(shared.SubjectMath, shared.TopicFraction, false, q("a", "b"), now)
	p.Record(shared.SubjectMath, shared.TopicFraction, false, q("a", "b"), now)
	p.Record(shared.SubjectEnglish, shared.TopicVocabulary, true, q("a", "b"), now)

	text := FormatSuggestions(p.Suggestions())
	assert.Contains(t, text, "数学需要加强（33%）")
	assert.Contains(t, text, "重点复习：分数")
	assert.Contains(t, text, "英语掌握得很好（100%）")
	assert.Contains(t, text, "语文：还没开始学习")
}
