// Package timeutil provides timezone utilities for the Asia/Shanghai timezone (UTC+8).
// Students and their school days are all in China, so day boundaries for streaks,
// daily tasks and greetings are computed here.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// ShanghaiTZ is China Standard Time (UTC+8, no DST).
var ShanghaiTZ = time.FixedZone("Asia/Shanghai", 8*60*60)

// Now returns the current time in Shanghai timezone.
func Now() time.Time {
	return time.Now().In(ShanghaiTZ)
}

// ToShanghai converts a time to Shanghai timezone.
func ToShanghai(t time.Time) time.Time {
	return t.In(ShanghaiTZ)
}

// Date creates a time in Shanghai timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, ShanghaiTZ)
}

// DateTime creates a time in Shanghai timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, ShanghaiTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Shanghai timezone.
func StartOfDay(t time.Time) time.Time {
	s := ToShanghai(t)
	return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, ShanghaiTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Shanghai timezone.
func StartOfWeek(t time.Time) time.Time {
	s := ToShanghai(t)
	weekday := int(s.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(s.AddDate(0, 0, -(weekday - 1)))
}

// ══════════════════════════════════════════════════════════════════════════════
// Day arithmetic
// ══════════════════════════════════════════════════════════════════════════════

// IsSameDay checks if two times are on the same day in Shanghai timezone.
func IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := ToShanghai(t1), ToShanghai(t2)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// IsConsecutiveDay checks if t2 is the day after t1.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	return IsSameDay(ToShanghai(t1).AddDate(0, 0, 1), t2)
}

// DaysBetween calculates the number of whole days between two times.
func DaysBetween(t1, t2 time.Time) int {
	days := int(StartOfDay(t2).Sub(StartOfDay(t1)).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// DayKey returns the Shanghai calendar date of t as "2006-01-02".
// Day keys are what gets persisted for streak and daily-task bookkeeping.
func DayKey(t time.Time) string {
	return ToShanghai(t).Format(FormatDate)
}

// PreviousDayKey returns the day key of the day before t.
func PreviousDayKey(t time.Time) string {
	return DayKey(ToShanghai(t).AddDate(0, 0, -1))
}

// WeekKey returns the Monday day key of the week containing t.
func WeekKey(t time.Time) string {
	return DayKey(StartOfWeek(t))
}

// IsWeekend checks if the given time is on a weekend.
func IsWeekend(t time.Time) bool {
	weekday := ToShanghai(t).Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// ══════════════════════════════════════════════════════════════════════════════
// Period of day
// ══════════════════════════════════════════════════════════════════════════════

// Period is a coarse part of the day used for greetings.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// Chinese returns 早上, 下午 or 晚上.
func (p Period) Chinese() string {
	switch p {
	case PeriodMorning:
		return "早上"
	case PeriodAfternoon:
		return "下午"
	default:
		return "晚上"
	}
}

// PeriodOfDay returns morning for 05-12, afternoon for 12-18 and evening otherwise.
func PeriodOfDay(t time.Time) Period {
	hour := ToShanghai(t).Hour()
	switch {
	case hour >= 5 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 18:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// Formatting
// ══════════════════════════════════════════════════════════════════════════════

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatChineseDate renders dates like 2024年3月1日.
	FormatChineseDate = "2006年1月2日"
)

// Format formats a time in Shanghai timezone with the given layout.
func Format(t time.Time, layout string) string {
	return ToShanghai(t).Format(layout)
}

// FormatDateTimeStr formats a time as datetime string in Shanghai timezone.
func FormatDateTimeStr(t time.Time) string {
	return Format(t, FormatDateTime)
}

// FormatChinese formats a time as a Chinese date.
func FormatChinese(t time.Time) string {
	return Format(t, FormatChineseDate)
}

// FormatRelative returns a human-readable relative time string in Chinese.
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Minute:
		return "刚刚"
	case d < time.Hour:
		return fmt.Sprintf("%d分钟前", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d小时前", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "昨天"
		}
		return fmt.Sprintf("%d天前", days)
	}
}

// ParseDayKey parses a "2006-01-02" key in Shanghai timezone.
func ParseDayKey(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, ShanghaiTZ)
}
