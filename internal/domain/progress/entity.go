// Package progress is the learning ledger: answered questions per subject and
// topic, the wrong-question book and the daily study streak.
package progress

import (
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

const (
	// MaxWrongQuestions bounds the wrong-question book.
	MaxWrongQuestions = 20
	// MaxTrackedDays is how many calendar days of per-day counts are kept.
	MaxTrackedDays = 31
)

// TopicStats counts attempts for one topic.
type TopicStats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Accuracy returns the rounded percentage of correct attempts.
func (t TopicStats) Accuracy() int {
	return shared.Percent(t.Correct, t.Total)
}

// SubjectStats counts attempts for one subject.
type SubjectStats struct {
	Questions int                         `json:"questions"`
	Correct   int                         `json:"correct"`
	Topics    map[shared.Topic]TopicStats `json:"topics"`
}

// DayStats counts the answers of one calendar day.
type DayStats struct {
	Questions int                    `json:"questions"`
	Correct   int                    `json:"correct"`
	Subjects  map[shared.Subject]int `json:"subjects,omitempty"`
}

// WrongQuestion is one entry of the wrong-question book.
type WrongQuestion struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Subject  shared.Subject `json:"subject"`
	Topic    shared.Topic   `json:"topic,omitempty"`
	Date     time.Time      `json:"date"`
}

// Progress is the per-user ledger document.
type Progress struct {
	UserID         string                          `json:"user_id"`
	Grade          shared.Grade                    `json:"grade"`
	CreatedAt      time.Time                       `json:"created_at"`
	LastActiveAt   time.Time                       `json:"last_active_at"`
	TotalQuestions int                             `json:"total_questions"`
	CorrectAnswers int                             `json:"correct_answers"`
	Subjects       map[shared.Subject]SubjectStats `json:"subjects"`
	WrongQuestions []WrongQuestion                 `json:"wrong_questions"`
	Streak         int                             `json:"streak"`
	LastStudyDate  string                          `json:"last_study_date,omitempty"`
	Days           map[string]DayStats             `json:"days,omitempty"` // keyed by timeutil.DayKey
}

// New creates an empty ledger for a user.
func New(userID string, now time.Time) *Progress {
	p := &Progress{
		UserID:         userID,
		Grade:          shared.DefaultGrade,
		CreatedAt:      now,
		LastActiveAt:   now,
		Subjects:       make(map[shared.Subject]SubjectStats, 3),
		WrongQuestions: []WrongQuestion{},
		Days:           make(map[string]DayStats),
	}
	p.ensureSubjects()
	return p
}

// ensureSubjects fills missing subject entries, e.g. after decoding an old document.
func (p *Progress) ensureSubjects() {
	if p.Subjects == nil {
		p.Subjects = make(map[shared.Subject]SubjectStats, 3)
	}
	for _, s := range shared.AllSubjects() {
		stats := p.Subjects[s]
		if stats.Topics == nil {
			stats.Topics = make(map[shared.Topic]TopicStats)
		}
		p.Subjects[s] = stats
	}
	if p.WrongQuestions == nil {
		p.WrongQuestions = []WrongQuestion{}
	}
	if p.Days == nil {
		p.Days = make(map[string]DayStats)
	}
}

// Normalize repairs zero-valued maps and slices of a decoded document.
func (p *Progress) Normalize(userID string) {
	if p.UserID == "" {
		p.UserID = userID
	}
	if !p.Grade.IsSupported() {
		p.Grade = shared.DefaultGrade
	}
	p.ensureSubjects()
}

// Subject returns the stats of one subject.
func (p *Progress) Subject(s shared.Subject) SubjectStats {
	return p.Subjects[s]
}

// Record adds one answered question to the ledger.
func (p *Progress) Record(subject shared.Subject, topic shared.Topic, correct bool, q question.Question, now time.Time) {
	p.ensureSubjects()

	p.TotalQuestions++
	p.LastActiveAt = now

	stats := p.Subjects[subject]
	if stats.Topics == nil {
		stats.Topics = make(map[shared.Topic]TopicStats)
	}
	stats.Questions++
	if correct {
		p.CorrectAnswers++
		stats.Correct++
	}

	if topic != "" {
		ts := stats.Topics[topic]
		ts.Total++
		if correct {
			ts.Correct++
		}
		stats.Topics[topic] = ts
	}
	p.Subjects[subject] = stats

	if !correct {
		p.WrongQuestions = append(p.WrongQuestions, WrongQuestion{
			Question: q.Text,
			Answer:   q.Answer,
			Subject:  subject,
			Topic:    topic,
			Date:     now,
		})
		if len(p.WrongQuestions) > MaxWrongQuestions {
			p.WrongQuestions = append([]WrongQuestion(nil), p.WrongQuestions[len(p.WrongQuestions)-MaxWrongQuestions:]...)
		}
	}

	p.recordDay(subject, correct, now)
	p.touchStreak(now)
}

// recordDay counts the answer against today and forgets days older than
// MaxTrackedDays.
func (p *Progress) recordDay(subject shared.Subject, correct bool, now time.Time) {
	key := timeutil.DayKey(now)
	day := p.Days[key]
	if day.Subjects == nil {
		day.Subjects = make(map[shared.Subject]int, 1)
	}
	day.Questions++
	day.Subjects[subject]++
	if correct {
		day.Correct++
	}
	p.Days[key] = day

	oldest := timeutil.DayKey(timeutil.ToShanghai(now).AddDate(0, 0, -(MaxTrackedDays - 1)))
	for k := range p.Days {
		// Day keys sort chronologically.
		if k < oldest {
			delete(p.Days, k)
		}
	}
}

// Day returns the counts of the calendar day containing t.
func (p *Progress) Day(t time.Time) DayStats {
	return p.Days[timeutil.DayKey(t)]
}

// touchStreak extends the streak on the first answer of a day that follows
// a study day, and restarts it after a gap.
func (p *Progress) touchStreak(now time.Time) {
	today := timeutil.DayKey(now)
	if p.LastStudyDate == today {
		return
	}
	if p.LastStudyDate == timeutil.PreviousDayKey(now) {
		p.Streak++
	} else {
		p.Streak = 1
	}
	p.LastStudyDate = today
}

// Accuracy returns the overall rounded percentage of correct answers.
func (p *Progress) Accuracy() int {
	return shared.Percent(p.CorrectAnswers, p.TotalQuestions)
}

// Clone returns a deep copy.
func (p *Progress) Clone() *Progress {
	out := *p
	out.Subjects = make(map[shared.Subject]SubjectStats, len(p.Subjects))
	for s, stats := range p.Subjects {
		topics := make(map[shared.Topic]TopicStats, len(stats.Topics))
		for t, ts := range stats.Topics {
			topics[t] = ts
		}
		stats.Topics = topics
		out.Subjects[s] = stats
	}
	out.WrongQuestions = append([]WrongQuestion{}, p.WrongQuestions...)
	out.Days = make(map[string]DayStats, len(p.Days))
	for k, day := range p.Days {
		subjects := make(map[shared.Subject]int, len(day.Subjects))
		for s, n := range day.Subjects {
			subjects[s] = n
		}
		day.Subjects = subjects
		out.Days[k] = day
	}
	return &out
}
