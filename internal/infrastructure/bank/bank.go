// Package bank is the static, in-memory question provider.
// Each subject has a per-grade table of topic sections; requests draw a
// shuffled sample from the matching sections.
package bank

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

type entry struct {
	text       string
	answer     string
	difficulty shared.Difficulty
}

type section struct {
	topic   shared.Topic
	entries []entry
}

// gradeTable maps a grade to its ordered sections.
type gradeTable map[shared.Grade][]section

// topicAliases lets one extracted topic cover sibling sections.
var topicAliases = map[shared.Topic][]shared.Topic{
	shared.TopicAddition: {shared.TopicAddition, shared.TopicSubtraction},
	shared.TopicReading:  {shared.TopicReading, shared.TopicReadingComprehension},
}

// Bank implements question.Provider over the built-in tables.
type Bank struct {
	tables map[shared.Subject]gradeTable
	newID  func() string
}

// New creates a Bank with the built-in math, english and chinese tables.
func New() *Bank {
	return &Bank{
		tables: map[shared.Subject]gradeTable{
			shared.SubjectMath:    mathTable,
			shared.SubjectEnglish: englishTable,
			shared.SubjectChinese: chineseTable,
		},
		newID: uuid.NewString,
	}
}

// GetQuestions implements question.Provider.
//
// Unsupported grades fall back to the default grade. A topic with no section
// in the grade falls back to the whole grade pool; a difficulty that filters
// everything out is ignored.
func (b *Bank) GetQuestions(ctx context.Context, subject shared.Subject, opts question.Options) ([]question.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, ok := b.tables[subject]
	if !ok {
		return nil, shared.WrapError("question", "GetQuestions", shared.ErrInvalidInput,
			"unknown subject "+subject.String(), shared.ErrUnknownSubject)
	}

	grade := opts.Grade
	if !grade.IsSupported() {
		grade = shared.DefaultGrade
	}
	if opts.Count <= 0 {
		return []question.Question{}, nil
	}

	pool := b.pool(table[grade], opts.Topic)
	picked := lo.Shuffle(pool)
	if opts.Difficulty != "" {
		// Preferred difficulty first; the rest tops the set up.
		matching, rest := lo.FilterReject(picked, func(c candidate, _ int) bool {
			return c.entry.difficulty == opts.Difficulty
		})
		picked = append(matching, rest...)
	}
	if len(picked) > opts.Count {
		picked = picked[:opts.Count]
	}

	return lo.Map(picked, func(c candidate, _ int) question.Question {
		return question.Question{
			ID:         b.newID(),
			Text:       c.entry.text,
			Answer:     c.entry.answer,
			Type:       c.topic,
			Difficulty: c.entry.difficulty,
			Subject:    subject,
			Grade:      grade,
		}
	}), nil
}

type candidate struct {
	topic shared.Topic
	entry entry
}

func (b *Bank) pool(sections []section, topic *shared.Topic) []candidate {
	wanted := func(section) bool { return true }
	if topic != nil {
		accept := topicAliases[*topic]
		if accept == nil {
			accept = []shared.Topic{*topic}
		}
		hasAny := lo.SomeBy(sections, func(s section) bool { return lo.Contains(accept, s.topic) })
		if hasAny {
			wanted = func(s section) bool { return lo.Contains(accept, s.topic) }
		}
	}

	var out []candidate
	for _, s := range sections {
		if !wanted(s) {
			continue
		}
		for _, e := range s.entries {
			out = append(out, candidate{topic: s.topic, entry: e})
		}
	}
	return out
}

// CheckAnswer implements question.Provider.
func (b *Bank) CheckAnswer(ctx context.Context, q question.Question, input string) (question.AnswerResult, error) {
	if err := ctx.Err(); err != nil {
		return question.AnswerResult{}, err
	}
	if q.Answer == "" {
		return question.AnswerResult{}, shared.ErrEmptyQuestion
	}

	correct := matches(q.Subject, q.Answer, strings.TrimSpace(input))

	return question.AnswerResult{
		Correct:       correct,
		CorrectAnswer: q.Answer,
		Feedback:      feedback(q.Subject, correct),
	}, nil
}

// matches applies the per-subject leniency rules. Empty input never matches.
func matches(subject shared.Subject, answer, input string) bool {
	if input == "" {
		return false
	}
	switch subject {
	case shared.SubjectMath:
		return answer == input ||
			strings.Contains(answer, input) ||
			normalize(answer) == normalize(input)
	case shared.SubjectEnglish:
		lower := strings.ToLower(input)
		if strings.Contains(lower, strings.ToLower(answer)) {
			return true
		}
		// "经历/经验" and "Beijing / 北京" list accepted alternatives.
		return lo.SomeBy(strings.Split(answer, "/"), func(alt string) bool {
			alt = strings.ToLower(strings.TrimSpace(alt))
			return alt != "" && strings.Contains(lower, alt)
		})
	case shared.SubjectChinese:
		return strings.Contains(input, answer)
	default:
		return normalize(answer) == normalize(input)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func feedback(subject shared.Subject, correct bool) string {
	if correct {
		switch subject {
		case shared.SubjectEnglish:
			return "太棒了！拼写正确！🌟"
		case shared.SubjectChinese:
			return "太棒了！回答正确！🌟"
		default:
			return "太棒了！完全正确！🌟"
		}
	}
	if subject == shared.SubjectEnglish {
		return "加油，再想想这个单词的意思～"
	}
	return "再想一想，答案不完全对哦～"
}

// TotalCount returns how many questions the bank holds for a subject.
func (b *Bank) TotalCount(subject shared.Subject) int {
	total := 0
	for _, sections := range b.tables[subject] {
		for _, s := range sections {
			total += len(s.entries)
		}
	}
	return total
}

// Topics lists the distinct topics the bank covers for a subject and grade,
// in table order.
func (b *Bank) Topics(subject shared.Subject, grade shared.Grade) []shared.Topic {
	return lo.Uniq(lo.Map(b.tables[subject][grade], func(s section, _ int) shared.Topic {
		return s.topic
	}))
}
