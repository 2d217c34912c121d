package bank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

func topicPtr(t shared.Topic) *shared.Topic { return &t }

func TestBank_GetQuestions(t *testing.T) {
	b := New()
	ctx := context.Background()

	t.Run("math grade 2 returns the requested count", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectMath, question.Options{Grade: 2, Count: 5})
		require.NoError(t, err)
		require.Len(t, qs, 5)
		for _, q := range qs {
			assert.Equal(t, shared.SubjectMath, q.Subject)
			assert.Equal(t, shared.Grade(2), q.Grade)
			assert.NotEmpty(t, q.ID)
			assert.NotEmpty(t, q.Answer)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectEnglish, question.Options{Grade: 2, Count: 10})
		require.NoError(t, err)
		seen := map[string]bool{}
		for _, q := range qs {
			assert.False(t, seen[q.ID])
			seen[q.ID] = true
		}
	})

	t.Run("pool exhaustion returns fewer", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectChinese, question.Options{Grade: 5, Count: 50})
		require.NoError(t, err)
		assert.Len(t, qs, 5)
	})

	t.Run("topic narrows the pool", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectMath, question.Options{
			Grade: 3, Count: 20, Topic: topicPtr(shared.TopicFraction),
		})
		require.NoError(t, err)
		require.NotEmpty(t, qs)
		for _, q := range qs {
			assert.Equal(t, shared.TopicFraction, q.Type)
		}
	})

	t.Run("addition covers subtraction", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectMath, question.Options{
			Grade: 2, Count: 100, Topic: topicPtr(shared.TopicAddition),
		})
		require.NoError(t, err)
		assert.Len(t, qs, 25)
	})

	t.Run("topic missing in grade falls back to the grade pool", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectMath, question.Options{
			Grade: 2, Count: 3, Topic: topicPtr(shared.TopicPercentage),
		})
		require.NoError(t, err)
		assert.Len(t, qs, 3)
	})

	t.Run("preferred difficulty comes first", func(t *testing.T) {
		all, err := b.GetQuestions(ctx, shared.SubjectMath, question.Options{Grade: 5, Count: 100})
		require.NoError(t, err)

		qs, err := b.GetQuestions(ctx, shared.SubjectMath, question.Options{
			Grade: 5, Count: 100, Difficulty: shared.DifficultyHard,
		})
		require.NoError(t, err)
		require.Len(t, qs, len(all), "other difficulties top the set up")
		require.Equal(t, shared.DifficultyHard, qs[0].Difficulty)

		seenOther := false
		for _, q := range qs {
			if q.Difficulty != shared.DifficultyHard {
				seenOther = true
				continue
			}
			assert.False(t, seenOther, "hard question after a non-hard one")
		}
	})

	t.Run("unsupported grade falls back to default", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectMath, question.Options{Grade: 6, Count: 2})
		require.NoError(t, err)
		require.Len(t, qs, 2)
		assert.Equal(t, shared.DefaultGrade, qs[0].Grade)
	})

	t.Run("zero count", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectMath, question.Options{Grade: 3, Count: 0})
		require.NoError(t, err)
		assert.Empty(t, qs)
	})

	t.Run("chinese poems are tagged poetry", func(t *testing.T) {
		qs, err := b.GetQuestions(ctx, shared.SubjectChinese, question.Options{
			Grade: 2, Count: 10, Topic: topicPtr(shared.TopicPoetry),
		})
		require.NoError(t, err)
		require.Len(t, qs, 4)
		assert.Equal(t, shared.TopicPoetry, qs[0].Type)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := b.GetQuestions(ctx, shared.Subject("art"), question.Options{Grade: 3, Count: 5})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := b.GetQuestions(cctx, shared.SubjectMath, question.Options{Grade: 3, Count: 5})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBank_CheckAnswer(t *testing.T) {
	b := New()
	ctx := context.Background()

	tests := []struct {
		name    string
		q       question.Question
		input   string
		correct bool
	}{
		{"math exact", question.Question{Subject: shared.SubjectMath, Answer: "42"}, "42", true},
		{"math answer contains input", question.Question{Subject: shared.SubjectMath, Answer: "4颗"}, "4", true},
		{"math normalized", question.Question{Subject: shared.SubjectMath, Answer: "1/2 > 1/3"}, " 1/2>1/3 ", true},
		{"math wrong", question.Question{Subject: shared.SubjectMath, Answer: "42"}, "wrong", false},
		{"math empty", question.Question{Subject: shared.SubjectMath, Answer: "42"}, "", false},
		{"math whitespace only", question.Question{Subject: shared.SubjectMath, Answer: "42"}, "   ", false},
		{"english contains answer", question.Question{Subject: shared.SubjectEnglish, Answer: "苹果"}, "是苹果", true},
		{"english case-insensitive", question.Question{Subject: shared.SubjectEnglish, Answer: "goes"}, "GOES", true},
		{"english alternative", question.Question{Subject: shared.SubjectEnglish, Answer: "经历/经验"}, "经验", true},
		{"english wrong", question.Question{Subject: shared.SubjectEnglish, Answer: "猫"}, "狗", false},
		{"chinese contains answer", question.Question{Subject: shared.SubjectChinese, Answer: "李白"}, "作者是李白", true},
		{"chinese wrong", question.Question{Subject: shared.SubjectChinese, Answer: "李白"}, "杜甫", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := b.CheckAnswer(ctx, tt.q, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.correct, res.Correct)
			assert.Equal(t, tt.q.Answer, res.CorrectAnswer)
			assert.NotEmpty(t, res.Feedback)
		})
	}
}

func TestBank_CheckAnswer_StoredAnswerIsAlwaysCorrect(t *testing.T) {
	b := New()
	ctx := context.Background()

	for _, subject := range shared.AllSubjects() {
		for g := shared.MinGrade; g <= shared.MaxGrade; g++ {
			qs, err := b.GetQuestions(ctx, subject, question.Options{Grade: g, Count: 100})
			require.NoError(t, err)
			for _, q := range qs {
				res, err := b.CheckAnswer(ctx, q, q.Answer)
				require.NoError(t, err)
				assert.True(t, res.Correct, "%s grade %d: %s", subject, g, q.Text)
			}
		}
	}
}

func TestBank_CheckAnswer_EmptyQuestion(t *testing.T) {
	_, err := New().CheckAnswer(context.Background(), question.Question{Subject: shared.SubjectMath}, "1")
	assert.ErrorIs(t, err, shared.ErrEmptyQuestion)
}

func TestBank_Catalog(t *testing.T) {
	b := New()

	assert.Equal(t, 107, b.TotalCount(shared.SubjectMath))
	assert.Equal(t, 61, b.TotalCount(shared.SubjectEnglish))
	assert.Equal(t, 37, b.TotalCount(shared.SubjectChinese))
	assert.Equal(t, []shared.Topic{shared.TopicCharacters, shared.TopicPoetry}, b.Topics(shared.SubjectChinese, 2))
}
