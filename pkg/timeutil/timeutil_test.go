package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey_UsesShanghaiDate(t *testing.T) {
	// 17:30 UTC is already the next day in Shanghai.
	utc := time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-02", DayKey(utc))
	assert.Equal(t, "2024-03-01", PreviousDayKey(utc))
}

func TestWeekKey(t *testing.T) {
	sunday := DateTime(2024, 3, 3, 20, 0, 0)
	assert.Equal(t, "2024-02-26", WeekKey(sunday))
	assert.Equal(t, "2024-03-04", WeekKey(DateTime(2024, 3, 4, 8, 0, 0)))
}

func TestIsConsecutiveDay(t *testing.T) {
	a := DateTime(2024, 2, 28, 23, 0, 0)
	b := DateTime(2024, 2, 29, 1, 0, 0)

	assert.True(t, IsConsecutiveDay(a, b))
	assert.False(t, IsConsecutiveDay(b, a))
	assert.True(t, IsSameDay(b, DateTime(2024, 2, 29, 22, 0, 0)))
	assert.Equal(t, 2, DaysBetween(a, DateTime(2024, 3, 1, 0, 0, 1)))
}

func TestPeriodOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want Period
	}{
		{4, PeriodEvening},
		{5, PeriodMorning},
		{11, PeriodMorning},
		{12, PeriodAfternoon},
		{17, PeriodAfternoon},
		{18, PeriodEvening},
		{23, PeriodEvening},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PeriodOfDay(DateTime(2024, 3, 1, tt.hour, 0, 0)), "hour %d", tt.hour)
	}
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(Date(2024, 3, 2)))
	assert.True(t, IsWeekend(Date(2024, 3, 3)))
	assert.False(t, IsWeekend(Date(2024, 3, 4)))
}

func TestFormatRelative(t *testing.T) {
	now := DateTime(2024, 3, 1, 12, 0, 0)

	assert.Equal(t, "刚刚", FormatRelative(now.Add(-10*time.Second), now))
	assert.Equal(t, "5分钟前", FormatRelative(now.Add(-5*time.Minute), now))
	assert.Equal(t, "昨天", FormatRelative(now.Add(-30*time.Hour), now))
	assert.Equal(t, "2024年3月1日", FormatChinese(now))
}

func TestParseDayKey(t *testing.T) {
	d, err := ParseDayKey("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", DayKey(d))
}
