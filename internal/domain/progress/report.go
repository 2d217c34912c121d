package progress

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

// WeakPointThreshold is the accuracy below which a topic counts as weak.
const WeakPointThreshold = 60

// weakPointMinAttempts avoids flagging a topic after a single slip.
const weakPointMinAttempts = 2

// DefaultWrongBookLimit is how many wrong questions the book shows.
const DefaultWrongBookLimit = 10

// Summary is the headline view of a ledger.
type Summary struct {
	UserID         string                    `json:"user_id"`
	Grade          int                       `json:"grade"`
	TotalQuestions int                       `json:"total_questions"`
	CorrectAnswers int                       `json:"correct_answers"`
	Accuracy       string                    `json:"accuracy"`
	Streak         int                       `json:"streak"`
	LastActiveAt   time.Time                 `json:"last_active_at"`
	Subjects       map[shared.Subject]string `json:"subjects"`
}

// Summary builds the headline view, e.g. accuracy "67%" and subjects "2/3".
func (p *Progress) Summary() Summary {
	subjects := make(map[shared.Subject]string, 3)
	for _, s := range shared.AllSubjects() {
		st := p.Subjects[s]
		subjects[s] = fmt.Sprintf("%d/%d", st.Correct, st.Questions)
	}
	return Summary{
		UserID:         p.UserID,
		Grade:          p.Grade.Int(),
		TotalQuestions: p.TotalQuestions,
		CorrectAnswers: p.CorrectAnswers,
		Accuracy:       fmt.Sprintf("%d%%", p.Accuracy()),
		Streak:         p.Streak,
		LastActiveAt:   p.LastActiveAt,
		Subjects:       subjects,
	}
}

// WeakPoint is a topic with low accuracy.
type WeakPoint struct {
	Subject  shared.Subject `json:"subject"`
	Topic    shared.Topic   `json:"topic"`
	Accuracy int            `json:"accuracy"`
	Total    int            `json:"total"`
	Correct  int            `json:"correct"`
}

// WeakPoints returns topics under WeakPointThreshold with at least two
// attempts, weakest first.
func (p *Progress) WeakPoints() []WeakPoint {
	var out []WeakPoint
	for _, s := range shared.AllSubjects() {
		for topic, ts := range p.Subjects[s].Topics {
			if ts.Total < weakPointMinAttempts || ts.Accuracy() >= WeakPointThreshold {
				continue
			}
			out = append(out, WeakPoint{
				Subject:  s,
				Topic:    topic,
				Accuracy: ts.Accuracy(),
				Total:    ts.Total,
				Correct:  ts.Correct,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy < out[j].Accuracy
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

// WrongBook returns the latest limit wrong questions, oldest first.
func (p *Progress) WrongBook(limit int) []WrongQuestion {
	if limit <= 0 || limit > len(p.WrongQuestions) {
		limit = len(p.WrongQuestions)
	}
	return append([]WrongQuestion{}, p.WrongQuestions[len(p.WrongQuestions)-limit:]...)
}

// Encouragement picks the closing line of a report.
func Encouragement(accuracy, streak int) string {
	switch {
	case accuracy >= 90:
		return "🌟 太棒了！正确率很高！继续保持！"
	case accuracy >= 70:
		return "💪 不错！继续努力，可以做得更好！"
	case streak >= 3:
		return "🔥 连续学习3天以上！你的毅力很棒！"
	default:
		return "📚 每天进步一点点，最终会成功！"
	}
}

// Report is the full learning report.
type Report struct {
	Date          time.Time
	Summary       Summary
	WeakPoints    []WeakPoint
	WrongCount    int
	Encouragement string
}

// Report builds the learning report as of now.
func (p *Progress) Report(now time.Time) Report {
	return Report{
		Date:          now,
		Summary:       p.Summary(),
		WeakPoints:    p.WeakPoints(),
		WrongCount:    len(p.WrongBook(DefaultWrongBookLimit)),
		Encouragement: Encouragement(p.Accuracy(), p.Streak),
	}
}

// Format renders the report as chat text.
func (r Report) Format() string {
	var b strings.Builder
	s := r.Summary

	b.WriteString("📊 学习报告\n")
	fmt.Fprintf(&b, "📅 %s\n\n", timeutil.FormatChinese(r.Date))
	fmt.Fprintf(&b, "总题数：%d\n正确数：%d\n正确率：%s\n连续学习：%d天\n\n",
		s.TotalQuestions, s.CorrectAnswers, s.Accuracy, s.Streak)

	b.WriteString("📚 各科情况\n")
	for _, subj := range shared.AllSubjects() {
		fmt.Fprintf(&b, "%s：%s\n", subj.DisplayName(), s.Subjects[subj])
	}

	b.WriteString("\n🎯 薄弱知识点\n")
	if len(r.WeakPoints) == 0 {
		b.WriteString("暂无薄弱知识点，继续保持！\n")
	} else {
		for _, wp := range r.WeakPoints {
			fmt.Fprintf(&b, "- %s - %s：%d%%\n", wp.Subject.DisplayName(), wp.Topic.DisplayName(), wp.Accuracy)
		}
	}
	if r.WrongCount > 0 {
		fmt.Fprintf(&b, "\n📖 错题本里有%d道题，记得复习哦～\n", r.WrongCount)
	}

	b.WriteString("\n")
	b.WriteString(r.Encouragement)
	return b.String()
}

// FormatWrongBook renders the wrong-question book.
func FormatWrongBook(items []WrongQuestion) string {
	if len(items) == 0 {
		return "📖 错题本是空的，太棒了！继续保持～"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📖 错题本（最近%d道）\n\n", len(items))
	for i, w := range items {
		fmt.Fprintf(&b, "%d. [%s] %s\n   正确答案：%s\n", i+1, w.Subject.DisplayName(), w.Question, w.Answer)
	}
	b.WriteString("\n把错题再做一遍，就能变成你的拿手题！💪")
	return b.String()
}
