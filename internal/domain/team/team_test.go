package team

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

var now = timeutil.DateTime(2024, 3, 1, 10, 0, 0)

const teamID = "3f2b6f7e-0c1d-4a5e-9b8a-1234567890ab"

func TestInviteCode(t *testing.T) {
	code := InviteCode(teamID)

	assert.Len(t, code, 6)
	assert.Equal(t, code, InviteCode(teamID), "deterministic")
	assert.NotEqual(t, code, InviteCode("another-team"))
	assert.Regexp(t, `^[0-9A-F]{6}$`, code)
	assert.Equal(t, code, NormalizeCode(" "+code+" "))
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindMath, DetectKind("创建小队 数学攻关"))
	assert.Equal(t, KindReading, DetectKind("我们一起读书"))
	assert.Equal(t, KindStudy, DetectKind("创建小队 飞虎队"))
}

func TestCreate(t *testing.T) {
	tm := Create(teamID, "alice-1234", "", KindEnglish, now)

	assert.Equal(t, "英语角", tm.Name)
	assert.Equal(t, 4, tm.MaxMembers)
	assert.Equal(t, InviteCode(teamID), tm.Code)
	require.Len(t, tm.Members, 1)
	assert.True(t, tm.Members[0].IsLeader)
	assert.Equal(t, "同学1234", tm.Members[0].Name)
	assert.Contains(t, tm.FormatCreated(), tm.Code)
}

func TestJoinAndLeave(t *testing.T) {
	tm := Create(teamID, "leader", "飞虎队", KindMath, now)

	require.NoError(t, tm.Join("u2", now))
	assert.ErrorIs(t, tm.Join("u2", now), shared.ErrAlreadyInTeam)
	require.NoError(t, tm.Join("u3", now))
	require.NoError(t, tm.Join("u4", now))
	assert.ErrorIs(t, tm.Join("u5", now), shared.ErrTeamFull)

	require.NoError(t, tm.Leave("u3"))
	assert.False(t, tm.Has("u3"))
	assert.ErrorIs(t, tm.Leave("u3"), shared.ErrTeamNotFound)
	assert.ErrorIs(t, tm.Leave("leader"), shared.ErrInvalidState)
}

func TestRecordAnswer(t *testing.T) {
	tm := Create(teamID, "leader", "", KindStudy, now)
	require.NoError(t, tm.Join("u2", now))

	tm.RecordAnswer("u2", true, now)
	tm.RecordAnswer("u2", false, now)
	tm.RecordAnswer("leader", true, now)

	assert.Equal(t, 20, tm.TotalPoints)
	assert.Equal(t, DailyStats{Date: "2024-03-01", TotalQuestions: 3, TotalCorrect: 2}, tm.Daily)
	assert.Equal(t, 2, tm.Members[1].TotalQuestions)

	tomorrow := now.Add(24 * time.Hour)
	tm.RecordAnswer("u2", true, tomorrow)
	assert.Equal(t, 1, tm.Daily.TotalQuestions)
	assert.Equal(t, 1, tm.Members[1].TodayQuestions)
	assert.Equal(t, 3, tm.Members[1].TotalQuestions)
}

func TestRecordAnswer_LevelsUp(t *testing.T) {
	tm := Create(teamID, "leader", "", KindStudy, now)
	for i := 0; i < 50; i++ {
		tm.RecordAnswer("leader", true, now)
	}
	assert.Equal(t, 2, tm.Level)
}

func TestFormatInfo(t *testing.T) {
	tm := Create(teamID, "leader", "飞虎队", KindStudy, now)
	tm.RecordAnswer("leader", true, now)

	text := tm.FormatInfo(now)
	assert.Contains(t, text, "📚 飞虎队 (Lv.1)")
	assert.Contains(t, text, "👥 成员：1/5人")
	assert.Contains(t, text, "🔑 邀请码："+tm.Code)
	assert.Contains(t, text, "1. 👑 同学ader - 1题")
	assert.Contains(t, text, "正确率：100%")

	assert.NotContains(t, tm.FormatInfo(now.Add(48*time.Hour)), "今日团队统计")
}

func TestFormatLeaderboard(t *testing.T) {
	tm := Create(teamID, "leader", "飞虎队", KindStudy, now)
	require.NoError(t, tm.Join("u2", now))
	tm.RecordAnswer("u2", true, now)

	text := tm.FormatLeaderboard()
	assert.Contains(t, text, "🥇 同学u2 - 1题")
	assert.Contains(t, text, "🥈 同学ader - 0题")
}

func TestFormatTasks(t *testing.T) {
	tm := Create(teamID, "leader", "飞虎队", KindStudy, now)
	for i := 0; i < 6; i++ {
		tm.RecordAnswer("leader", true, now)
	}

	text := tm.FormatTasks(now)
	assert.Contains(t, text, "今日进度：20%")
	assert.Contains(t, text, "已完成：6/30题")
	assert.Contains(t, text, "晚间冲刺")
}

func TestFormatNoTeam(t *testing.T) {
	text := FormatNoTeam()
	assert.Contains(t, text, "还没有加入小队")
	assert.Contains(t, text, "📗 阅读会 - 一起读好书")
}

func TestMembership(t *testing.T) {
	var m *Membership
	assert.False(t, m.InTeam())
	assert.True(t, (&Membership{TeamCode: "ABCDEF"}).InTeam())
}
