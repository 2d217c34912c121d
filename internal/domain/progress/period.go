package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

// Span is the window a parent report covers.
type Span string

const (
	SpanDay   Span = "day"
	SpanWeek  Span = "week"
	SpanMonth Span = "month"
)

// ParseSpan accepts "day", "week" and "month".
func ParseSpan(value string) (Span, bool) {
	switch s := Span(strings.ToLower(strings.TrimSpace(value))); s {
	case SpanDay, SpanWeek, SpanMonth:
		return s, true
	}
	return "", false
}

// Days returns the length of the window ending today.
func (s Span) Days() int {
	switch s {
	case SpanWeek:
		return 7
	case SpanMonth:
		return 30
	default:
		return 1
	}
}

func (s Span) title() string {
	switch s {
	case SpanWeek:
		return "周学习报告"
	case SpanMonth:
		return "月学习报告"
	default:
		return "今日学习报告"
	}
}

const (
	// MonthlyGoal is the number of questions a month report measures against.
	MonthlyGoal = 300
	// minutesPerQuestion estimates study time.
	minutesPerQuestion = 2
)

// DayEntry is one calendar day of a PeriodReport.
type DayEntry struct {
	Date time.Time `json:"date"`
	DayStats
}

// PeriodReport is the parent-facing report for one span.
type PeriodReport struct {
	Span           Span                   `json:"span"`
	From           time.Time              `json:"from"`
	To             time.Time              `json:"to"`
	Days           []DayEntry             `json:"days"`
	TotalQuestions int                    `json:"total_questions"`
	CorrectAnswers int                    `json:"correct_answers"`
	Accuracy       int                    `json:"accuracy"`
	StudyDays      int                    `json:"study_days"`
	AveragePerDay  int                    `json:"average_per_day"`
	LongestStreak  int                    `json:"longest_streak"`
	Subjects       map[shared.Subject]int `json:"subjects"`
	Streak         int                    `json:"streak"`
	WeakPoints     []WeakPoint            `json:"weak_points,omitempty"`
	Suggestions    []string               `json:"suggestions"`
}

// PeriodReport aggregates the per-day counts of the span ending on now's day.
func (p *Progress) PeriodReport(span Span, now time.Time) PeriodReport {
	today := timeutil.StartOfDay(now)
	n := span.Days()

	r := PeriodReport{
		Span:     span,
		From:     today.AddDate(0, 0, -(n - 1)),
		To:       today,
		Days:     make([]DayEntry, 0, n),
		Subjects: make(map[shared.Subject]int, 3),
		Streak:   p.Streak,
	}

	run := 0
	for i := n - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		day := p.Days[timeutil.DayKey(date)]
		r.Days = append(r.Days, DayEntry{Date: date, DayStats: day})

		r.TotalQuestions += day.Questions
		r.CorrectAnswers += day.Correct
		for s, count := range day.Subjects {
			r.Subjects[s] += count
		}
		if day.Questions > 0 {
			r.StudyDays++
			run++
			r.LongestStreak = max(r.LongestStreak, run)
		} else {
			run = 0
		}
	}
	r.Accuracy = shared.Percent(r.CorrectAnswers, r.TotalQuestions)
	r.AveragePerDay = (r.TotalQuestions + n/2) / n
	if span != SpanDay {
		r.WeakPoints = p.WeakPoints()
	}
	r.Suggestions = p.periodSuggestions(span, r)
	return r
}

func (p *Progress) periodSuggestions(span Span, r PeriodReport) []string {
	if p.TotalQuestions == 0 {
		return []string{"还没有开始学习，快来试试吧！"}
	}
	switch span {
	case SpanWeek:
		out := []string{"📚 建议每天固定时间学习，养成好习惯。"}
		if r.StudyDays < 5 {
			out = append(out, "📅 这周学习天数有点少，争取每天都练一练。")
		}
		return append(out, "📝 周末可以做一些综合复习。")
	case SpanMonth:
		return []string{"🎯 下个月可以设定一个学习目标！", "📊 保持现在的学习节奏，你会越来越棒！"}
	}

	var out []string
	if p.Streak < 3 {
		out = append(out, "💪 连续学习3天可以获得连续学习勋章哦！")
	}
	if r.Subjects[shared.SubjectMath] < 5 {
		out = append(out, "📖 今天数学练习有点少，建议增加一些。")
	}
	return out
}

// Mood describes the day's accuracy in one line.
func Mood(accuracy, questions int) string {
	switch {
	case questions == 0:
		return "😴 今天还没学习哦"
	case accuracy >= 90:
		return "🌟 表现超棒！"
	case accuracy >= 70:
		return "😊 表现不错！"
	case accuracy >= 50:
		return "💪 继续加油！"
	default:
		return "🤔 需要多练习哦"
	}
}

// EstimateDuration renders the estimated study time of n questions.
func EstimateDuration(n int) string {
	minutes := n * minutesPerQuestion
	if minutes < 60 {
		return fmt.Sprintf("%d分钟", minutes)
	}
	return fmt.Sprintf("%d小时%d分钟", minutes/60, minutes%60)
}

var weekdayNames = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// BestDay returns the day with the most answers; ties go to the earlier day.
func (r PeriodReport) BestDay() (DayEntry, bool) {
	var best DayEntry
	found := false
	for _, d := range r.Days {
		if d.Questions > best.Questions {
			best, found = d, true
		}
	}
	return best, found
}

// Format renders the report as chat text.
func (r PeriodReport) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 %s\n", r.Span.title())
	if r.Span == SpanDay {
		fmt.Fprintf(&b, "📅 %s\n\n", timeutil.FormatChinese(r.To))
	} else {
		fmt.Fprintf(&b, "📅 %d/%d - %d/%d\n\n", r.From.Month(), r.From.Day(), r.To.Month(), r.To.Day())
	}

	b.WriteString("📈 学习概况\n")
	fmt.Fprintf(&b, "总题数：%d题\n正确数：%d题\n正确率：%d%%\n", r.TotalQuestions, r.CorrectAnswers, r.Accuracy)
	switch r.Span {
	case SpanDay:
		fmt.Fprintf(&b, "预计用时：%s\n", EstimateDuration(r.TotalQuestions))
	case SpanWeek:
		fmt.Fprintf(&b, "学习天数：%d天\n日均：%d题\n", r.StudyDays, r.AveragePerDay)
		if best, ok := r.BestDay(); ok {
			fmt.Fprintf(&b, "🏆 最佳日：%s（%d题）\n", weekdayNames[best.Date.Weekday()], best.Questions)
		}
	case SpanMonth:
		fmt.Fprintf(&b, "学习天数：%d天\n日均：%d题\n🔥 最长连续：%d天\n", r.StudyDays, r.AveragePerDay, r.LongestStreak)
		fmt.Fprintf(&b, "\n🎯 月度目标：%d题\n进度：%d%%\n剩余：%d题\n",
			MonthlyGoal, min(100, shared.Percent(r.TotalQuestions, MonthlyGoal)), max(0, MonthlyGoal-r.TotalQuestions))
	}

	b.WriteString("\n📚 各科情况\n")
	for _, s := range shared.AllSubjects() {
		fmt.Fprintf(&b, "%s：%d题\n", s.DisplayName(), r.Subjects[s])
	}

	if r.Span == SpanDay {
		fmt.Fprintf(&b, "\n💡 学习状态\n%s\n🔥 连续学习：%d天\n", Mood(r.Accuracy, r.TotalQuestions), r.Streak)
	}

	if len(r.WeakPoints) > 0 {
		b.WriteString("\n🎯 需要加强的知识点\n")
		for _, wp := range r.WeakPoints {
			fmt.Fprintf(&b, "- %s - %s：%d%%\n", wp.Subject.DisplayName(), wp.Topic.DisplayName(), wp.Accuracy)
		}
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("\n📝 建议\n")
		b.WriteString(strings.Join(r.Suggestions, "\n"))
	}
	return strings.TrimRight(b.String(), "\n")
}
