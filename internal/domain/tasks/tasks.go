// Package tasks tracks the per-subject daily goals and the weekly tally.
package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

const (
	// DefaultGoal is the number of questions per subject per day.
	DefaultGoal = 5
	// MaxGoal caps a daily goal.
	MaxGoal = 100
)

// weekdays is indexed by time.Weekday.
var weekdays = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

var weekdayNames = map[string]string{
	"monday":    "周一",
	"tuesday":   "周二",
	"wednesday": "周三",
	"thursday":  "周四",
	"friday":    "周五",
	"saturday":  "周六",
	"sunday":    "周日",
}

// Counts is a per-subject tally.
type Counts map[shared.Subject]int

// Total sums all subjects.
func (c Counts) Total() int {
	return lo.Sum(lo.Values(c))
}

func newCounts(v int) Counts {
	c := make(Counts, 3)
	for _, s := range shared.AllSubjects() {
		c[s] = v
	}
	return c
}

// Tasks is the per-user daily task document.
type Tasks struct {
	UserID             string            `json:"user_id"`
	CreatedAt          time.Time         `json:"created_at"`
	CurrentDate        string            `json:"current_date"`
	CurrentWeek        string            `json:"current_week"`
	DailyGoal          Counts            `json:"daily_goal"`
	DailyProgress      Counts            `json:"daily_progress"`
	Weekly             map[string]Counts `json:"weekly_progress"`
	Streak             int               `json:"streak"`
	LastCompletedDate  string            `json:"last_completed_date,omitempty"`
	TotalDaysCompleted int               `json:"total_days_completed"`
}

// New creates an empty task document for today.
func New(userID string, now time.Time) *Tasks {
	t := &Tasks{
		UserID:        userID,
		CreatedAt:     now,
		CurrentDate:   timeutil.DayKey(now),
		CurrentWeek:   timeutil.WeekKey(now),
		DailyGoal:     newCounts(DefaultGoal),
		DailyProgress: newCounts(0),
	}
	t.resetWeek()
	return t
}

func (t *Tasks) resetWeek() {
	t.Weekly = make(map[string]Counts, len(weekdays))
	for _, d := range weekdays {
		t.Weekly[d] = newCounts(0)
	}
}

// Normalize repairs a decoded document and applies any pending refresh.
func (t *Tasks) Normalize(userID string, now time.Time) {
	if t.UserID == "" {
		*t = *New(userID, now)
		return
	}
	if t.DailyGoal == nil {
		t.DailyGoal = newCounts(DefaultGoal)
	}
	if t.DailyProgress == nil {
		t.DailyProgress = newCounts(0)
	}
	if t.Weekly == nil {
		t.resetWeek()
	}
	for _, d := range weekdays {
		if t.Weekly[d] == nil {
			t.Weekly[d] = newCounts(0)
		}
	}
	t.Refresh(now)
}

// Refresh starts a new day (and a new week) when the date moved on.
// It reports whether anything was reset.
func (t *Tasks) Refresh(now time.Time) bool {
	today := timeutil.DayKey(now)
	if t.CurrentDate == today {
		return false
	}

	if t.LastCompletedDate != timeutil.PreviousDayKey(now) && t.LastCompletedDate != today {
		t.Streak = 0
	}
	t.CurrentDate = today
	t.DailyProgress = newCounts(0)

	if week := timeutil.WeekKey(now); t.CurrentWeek != week {
		t.CurrentWeek = week
		t.resetWeek()
	}
	return true
}

// SetGoal changes one subject's daily goal.
func (t *Tasks) SetGoal(subject shared.Subject, count int) error {
	if !subject.IsValid() {
		return shared.ErrUnknownSubject
	}
	if count < 1 || count > MaxGoal {
		return shared.NewDomainError("tasks", "SetGoal", shared.ErrValueOutOfRange, "goal out of range")
	}
	t.DailyGoal[subject] = count
	return nil
}

// RecordResult describes what a recorded question changed.
type RecordResult struct {
	SubjectComplete bool
	// DayComplete is set only on the answer that finished the last goal today.
	DayComplete bool
}

// Record counts n answered questions for subject.
func (t *Tasks) Record(subject shared.Subject, n int, now time.Time) RecordResult {
	t.Refresh(now)
	if !subject.IsValid() || n <= 0 {
		return RecordResult{}
	}

	wasComplete := t.Complete()
	t.DailyProgress[subject] += n
	t.Weekly[weekdays[timeutil.ToShanghai(now).Weekday()]][subject] += n

	res := RecordResult{SubjectComplete: t.DailyProgress[subject] >= t.DailyGoal[subject]}
	if !wasComplete && t.Complete() {
		res.DayComplete = true
		t.markComplete(now)
	}
	return res
}

func (t *Tasks) markComplete(now time.Time) {
	today := timeutil.DayKey(now)
	if t.LastCompletedDate == today {
		return
	}
	if t.LastCompletedDate == timeutil.PreviousDayKey(now) {
		t.Streak++
	} else {
		t.Streak = 1
	}
	t.LastCompletedDate = today
	t.TotalDaysCompleted++
}

// Complete reports whether every subject reached its goal today.
func (t *Tasks) Complete() bool {
	return lo.EveryBy(shared.AllSubjects(), func(s shared.Subject) bool {
		return t.DailyProgress[s] >= t.DailyGoal[s]
	})
}

// Status renders today's task card.
func (t *Tasks) Status(now time.Time) string {
	t.Refresh(now)

	var b strings.Builder
	b.WriteString("📋 今日任务\n\n")

	totalGoal, totalDone := 0, 0
	for _, s := range shared.AllSubjects() {
		done, goal := t.DailyProgress[s], t.DailyGoal[s]
		mark := "⬜"
		if done >= goal {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %s: %d/%d题 (%d%%)\n", mark, s.DisplayName(), done, goal, shared.Percent(done, goal))
		totalGoal += goal
		totalDone += min(done, goal)
	}

	fmt.Fprintf(&b, "\n总进度：%d%%\n", shared.Percent(totalDone, totalGoal))
	fmt.Fprintf(&b, "🔥 连续完成：%d天 | 累计完成：%d天\n\n", t.Streak, t.TotalDaysCompleted)
	b.WriteString(t.Tip(now))
	return b.String()
}

// Tip suggests what to do next.
func (t *Tasks) Tip(now time.Time) string {
	if t.Complete() {
		return "🎉 太棒了！今天的任务全部完成！"
	}
	next, ok := lo.Find(shared.AllSubjects(), func(s shared.Subject) bool {
		return t.DailyProgress[s] < t.DailyGoal[s]
	})
	if !ok {
		return "快完成今天的任务了！"
	}
	return fmt.Sprintf("%s好！建议：来做点%s练习吧！", timeutil.PeriodOfDay(now).Chinese(), next.DisplayName())
}

// WeeklyStats is the week's tally per day and per subject.
type WeeklyStats struct {
	Days     []DayStat
	Subjects Counts
}

// DayStat is one weekday's tally.
type DayStat struct {
	Day    string
	Counts Counts
}

// WeeklyStats returns this week's tally from Monday to Sunday.
func (t *Tasks) WeeklyStats() WeeklyStats {
	order := append(weekdays[1:7:7], weekdays[0])
	stats := WeeklyStats{Subjects: newCounts(0)}
	for _, d := range order {
		c := t.Weekly[d]
		stats.Days = append(stats.Days, DayStat{Day: weekdayNames[d], Counts: c})
		for s, n := range c {
			stats.Subjects[s] += n
		}
	}
	return stats
}

// Format renders the weekly tally.
func (w WeeklyStats) Format() string {
	var b strings.Builder
	b.WriteString("📅 本周学习\n")
	for _, d := range w.Days {
		fmt.Fprintf(&b, "   %s：%d题\n", d.Day, d.Counts.Total())
	}
	parts := lo.Map(shared.AllSubjects(), func(s shared.Subject, _ int) string {
		return fmt.Sprintf("%s%d题", s.DisplayName(), w.Subjects[s])
	})
	fmt.Fprintf(&b, "\n合计：%s", strings.Join(parts, "，"))
	return b.String()
}
