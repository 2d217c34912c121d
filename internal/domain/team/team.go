// Package team implements study teams: a small roster with shared points,
// a daily tally and an invite code derived from the team id.
package team

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/crypto/blake2b"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

const (
	pointsPerCorrect = 10
	pointsPerLevel   = 500
	dailyTarget      = 30
	inviteCodeLength = 6
)

// Kind is a team flavour.
type Kind string

const (
	KindStudy   Kind = "study"
	KindMath    Kind = "math"
	KindEnglish Kind = "english"
	KindChinese Kind = "chinese"
	KindReading Kind = "reading"
)

type kindInfo struct {
	kind       Kind
	name       string
	emoji      string
	desc       string
	maxMembers int
	keywords   []string
}

var kinds = []kindInfo{
	{KindStudy, "学习大队", "📚", "共同学习，共同进步", 5, []string{"学习"}},
	{KindMath, "数学攻关队", "🔢", "专攻数学难题", 4, []string{"数学"}},
	{KindEnglish, "英语角", "📖", "一起学英语", 4, []string{"英语"}},
	{KindChinese, "文学社", "📕", "一起学语文", 4, []string{"语文", "文学"}},
	{KindReading, "阅读会", "📗", "一起读好书", 6, []string{"阅读", "读书"}},
}

func lookupKind(k Kind) kindInfo {
	info, ok := lo.Find(kinds, func(i kindInfo) bool { return i.kind == k })
	if !ok {
		return kinds[0]
	}
	return info
}

// DetectKind picks the team flavour mentioned in text, defaulting to study.
func DetectKind(text string) Kind {
	info, ok := lo.Find(kinds[1:], func(i kindInfo) bool {
		return lo.SomeBy(i.keywords, func(kw string) bool { return strings.Contains(text, kw) })
	})
	if !ok {
		return KindStudy
	}
	return info.kind
}

// InviteCode derives the six-character code players share to join a team.
func InviteCode(teamID string) string {
	sum := blake2b.Sum256([]byte(teamID))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:inviteCodeLength]
}

// NormalizeCode upper-cases and trims a typed code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DisplayName is how a user appears on rosters.
func DisplayName(userID string) string {
	r := []rune(userID)
	if len(r) > 4 {
		r = r[len(r)-4:]
	}
	return "同学" + string(r)
}

// Member is one roster entry.
type Member struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	JoinedAt       time.Time `json:"joined_at"`
	IsLeader       bool      `json:"is_leader"`
	TotalQuestions int       `json:"total_questions"`
	TodayQuestions int       `json:"today_questions"`
	TodayDate      string    `json:"today_date"`
}

// DailyStats is the team's tally for one day.
type DailyStats struct {
	Date           string `json:"date"`
	TotalQuestions int    `json:"total_questions"`
	TotalCorrect   int    `json:"total_correct"`
}

// Team is the roster document, stored under its invite code.
type Team struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Kind        Kind       `json:"kind"`
	Emoji       string     `json:"emoji"`
	Description string     `json:"description"`
	LeaderID    string     `json:"leader_id"`
	Members     []Member   `json:"members"`
	MaxMembers  int        `json:"max_members"`
	TotalPoints int        `json:"total_points"`
	Level       int        `json:"level"`
	Daily       DailyStats `json:"daily_stats"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Create builds a team led by leaderID. An empty name uses the kind's name.
func Create(id, leaderID, name string, kind Kind, now time.Time) *Team {
	info := lookupKind(kind)
	if strings.TrimSpace(name) == "" {
		name = info.name
	}
	return &Team{
		ID:          id,
		Code:        InviteCode(id),
		Name:        strings.TrimSpace(name),
		Kind:        info.kind,
		Emoji:       info.emoji,
		Description: info.desc,
		LeaderID:    leaderID,
		Members: []Member{{
			UserID:    leaderID,
			Name:      DisplayName(leaderID),
			JoinedAt:  now,
			IsLeader:  true,
			TodayDate: timeutil.DayKey(now),
		}},
		MaxMembers: info.maxMembers,
		Level:      1,
		Daily:      DailyStats{Date: timeutil.DayKey(now)},
		CreatedAt:  now,
	}
}

// IsZero reports whether t is an empty placeholder document.
func (t *Team) IsZero() bool {
	return t == nil || t.ID == ""
}

// Has reports whether userID is on the roster.
func (t *Team) Has(userID string) bool {
	return lo.ContainsBy(t.Members, func(m Member) bool { return m.UserID == userID })
}

// Join adds userID to the roster.
func (t *Team) Join(userID string, now time.Time) error {
	if t.Has(userID) {
		return shared.ErrAlreadyInTeam
	}
	if len(t.Members) >= t.MaxMembers {
		return shared.ErrTeamFull
	}
	t.Members = append(t.Members, Member{
		UserID:    userID,
		Name:      DisplayName(userID),
		JoinedAt:  now,
		TodayDate: timeutil.DayKey(now),
	})
	return nil
}

// Leave removes a non-leader member.
func (t *Team) Leave(userID string) error {
	if userID == t.LeaderID {
		return shared.NewDomainError("team", "Leave", shared.ErrInvalidState, "leader cannot leave")
	}
	if !t.Has(userID) {
		return shared.ErrTeamNotFound
	}
	t.Members = lo.Reject(t.Members, func(m Member, _ int) bool { return m.UserID == userID })
	return nil
}

func (t *Team) rollDay(now time.Time) {
	today := timeutil.DayKey(now)
	if t.Daily.Date != today {
		t.Daily = DailyStats{Date: today}
	}
}

// RecordAnswer credits one answered question to userID and the team.
func (t *Team) RecordAnswer(userID string, correct bool, now time.Time) {
	t.rollDay(now)
	today := timeutil.DayKey(now)

	for i := range t.Members {
		m := &t.Members[i]
		if m.UserID != userID {
			continue
		}
		if m.TodayDate != today {
			m.TodayDate = today
			m.TodayQuestions = 0
		}
		m.TotalQuestions++
		m.TodayQuestions++
		if correct {
			t.TotalPoints += pointsPerCorrect
		}
	}

	t.Daily.TotalQuestions++
	if correct {
		t.Daily.TotalCorrect++
	}
	for t.TotalPoints >= t.Level*pointsPerLevel {
		t.Level++
	}
}

// FormatInfo renders the team card.
func (t *Team) FormatInfo(now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (Lv.%d)\n\n", t.Emoji, t.Name, t.Level)
	fmt.Fprintf(&b, "📝 %s\n\n", t.Description)
	fmt.Fprintf(&b, "👑 队长：%s\n", DisplayName(t.LeaderID))
	fmt.Fprintf(&b, "👥 成员：%d/%d人\n", len(t.Members), t.MaxMembers)
	fmt.Fprintf(&b, "🏆 团队积分：%d分\n", t.TotalPoints)
	fmt.Fprintf(&b, "🔑 邀请码：%s\n\n", t.Code)

	b.WriteString("成员列表\n")
	for i, m := range t.Members {
		leader := ""
		if m.IsLeader {
			leader = "👑 "
		}
		fmt.Fprintf(&b, "%d. %s%s - %d题\n", i+1, leader, m.Name, m.TotalQuestions)
	}

	if t.Daily.Date == timeutil.DayKey(now) {
		b.WriteString("\n📊 今日团队统计\n")
		fmt.Fprintf(&b, "   总题数：%d题\n", t.Daily.TotalQuestions)
		fmt.Fprintf(&b, "   正确率：%d%%", shared.Percent(t.Daily.TotalCorrect, t.Daily.TotalQuestions))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatLeaderboard ranks members by questions answered.
func (t *Team) FormatLeaderboard() string {
	members := append([]Member(nil), t.Members...)
	sort.SliceStable(members, func(i, j int) bool { return members[i].TotalQuestions > members[j].TotalQuestions })

	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 %s 队内排行榜\n\n", t.Name)
	for i, m := range members {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&b, "%s %s - %d题\n", rank, m.Name, m.TotalQuestions)
	}
	return strings.TrimRight(b.String(), "\n")
}

type teamTask struct {
	emoji, name, description string
	reward                   int
}

var teamTasks = []teamTask{
	{"📚", "今日学习目标", "小队成员今日共完成30道题", 50},
	{"🎯", "全员达标", "所有成员今日正确率达到80%以上", 100},
	{"🤝", "团结一心", "小队今日共完成50道题", 80},
	{"🌅", "晨读时光", "早上6-9点，小队共完成20道题", 60},
	{"🌙", "晚间冲刺", "晚上7-10点，小队共完成25道题", 70},
}

// FormatTasks renders the shared goals and today's progress.
func (t *Team) FormatTasks(now time.Time) string {
	done := 0
	if t.Daily.Date == timeutil.DayKey(now) {
		done = t.Daily.TotalQuestions
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 %s 团队任务\n\n", t.Name)
	fmt.Fprintf(&b, "📊 今日进度：%d%%\n", min(100, shared.Percent(done, dailyTarget)))
	fmt.Fprintf(&b, "   已完成：%d/%d题\n\n", done, dailyTarget)
	b.WriteString("可选任务\n")
	for _, task := range teamTasks {
		fmt.Fprintf(&b, "%s %s\n   %s\n   奖励：%d积分\n\n", task.emoji, task.name, task.description, task.reward)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Encouragement is a random cheer naming the team.
func (t *Team) Encouragement() string {
	return lo.Sample([]string{
		fmt.Sprintf("💪 %s的伙伴们，今天也要努力学习哦！", t.Name),
		fmt.Sprintf("🌟 加油！%s的队友们等着你的好成绩！", t.Name),
		fmt.Sprintf("🎉 一起学习，一起进步！%s最棒！", t.Name),
		fmt.Sprintf("⭐ 你不是一个人在战斗！%s和你在一起！", t.Name),
	})
}

// FormatCreated announces a new team.
func (t *Team) FormatCreated() string {
	return fmt.Sprintf("🎉 恭喜！%s「%s」创建成功！\n\n%s\n\n💡 分享邀请码给小伙伴：%s\n小伙伴输入\"加入小队 %s\"就能加入啦！",
		t.Emoji, t.Name, t.Description, t.Code, t.Code)
}

// FormatJoined welcomes a new member.
func (t *Team) FormatJoined() string {
	return fmt.Sprintf("🎉 欢迎加入%s「%s」！\n\n和小伙伴们一起学习，共同进步吧！", t.Emoji, t.Name)
}

// FormatNoTeam explains how to create or join a team.
func FormatNoTeam() string {
	lines := lo.Map(kinds, func(k kindInfo, _ int) string {
		return fmt.Sprintf("%s %s - %s", k.emoji, k.name, k.desc)
	})
	return "📚 学习小队\n\n还没有加入小队呢！\n\n" +
		"💡 输入\"创建小队 [队名]\"创建新小队，或输入\"加入小队 [邀请码]\"加入小伙伴的小队！\n\n" +
		"小队类型：\n" + strings.Join(lines, "\n")
}

// Membership is the per-user pointer to a team.
type Membership struct {
	UserID   string    `json:"user_id"`
	TeamCode string    `json:"team_code,omitempty"`
	Role     string    `json:"role,omitempty"`
	JoinedAt time.Time `json:"joined_at,omitempty"`
}

// Roles.
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// InTeam reports whether the user belongs to a team.
func (m *Membership) InTeam() bool {
	return m != nil && m.TeamCode != ""
}
