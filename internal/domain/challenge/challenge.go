// Package challenge implements the themed practice challenges: a fixed
// catalog gated by grade and weekday, one start per challenge per day, and
// scoring with challenge-only badges.
package challenge

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

const (
	basePoints    = 10
	perfectBonus  = 5
	maxRecent     = 20
	weekendOnlyID = "weekend_champion"
)

// Definition is one catalog entry.
type Definition struct {
	ID           string
	Name         string
	Title        string // Name without the leading emoji
	Description  string
	Duration     time.Duration
	BonusPoints  int
	Subject      string // a shared.Subject or "mixed"
	MinGrade     shared.Grade
	Instructions string
}

var catalog = []Definition{
	{"speed_math", "⚡ 闪电计算", "闪电计算", "60秒内完成尽可能多的计算题", 60 * time.Second, 2, "math", 2,
		"在60秒内，尽可能快地完成计算题！每道题基础分10分，额外获得2分/题 bonus！"},
	{"mind_math", "🧠 智慧数学", "智慧数学", "3道思维拓展题，考验你的数学思维", 0, 3, "math", 3,
		"3道思维挑战题，考验你的数学逻辑！答对每道题得10分，如果3道全对，额外获得5分奖励！"},
	{"word_master", "👑 单词大王", "单词大王", "限时挑战拼写20个单词", 120 * time.Second, 2, "english", 2,
		"限时2分钟拼写20个单词！每个正确拼写得10分，额外获得2分/个 bonus！"},
	{"speaking_star", "⭐ 口语之星", "口语之星", "大声朗读3段英语短文", 0, 3, "english", 3,
		"大声朗读3段英语短文，录下你的声音！每段朗读正确得10分，额外获得3分 bonus！"},
	{"poetry_master", "📜 诗词达人", "诗词达人", "挑战背诵5首古诗", 0, 3, "chinese", 2,
		"挑战背诵5首古诗！每首正确背诵得10分，额外获得3分 bonus！"},
	{"story_teller", "📖 故事大王", "故事大王", "根据图片或关键词编一个小故事", 0, 4, "chinese", 3,
		"根据给定的关键词，编一个有趣的小故事！故事完整、有创意得10-15分！"},
	{"daily_boss", "👹 每日BOSS", "每日BOSS", "综合3科的高难度挑战题，完成有神秘奖励！", 0, 5, "mixed", 2,
		"这是今天的BOSS挑战题！包含3科的难题，答对一题得15分！完成有神秘奖励！"},
	{weekendOnlyID, "🏆 周末冠军", "周末冠军", "周末专属挑战，题量大、难度高、奖励丰厚！", 0, 6, "mixed", 2,
		"周末特别挑战！题量大、难度高、奖励丰厚！完成全部题目得20分/题，还有额外神秘奖励！"},
}

// All returns the full catalog.
func All() []Definition {
	return append([]Definition(nil), catalog...)
}

// Lookup returns the definition with the given id.
func Lookup(id string) (Definition, bool) {
	return lo.Find(catalog, func(d Definition) bool { return d.ID == id })
}

// Find resolves free text like "闪电计算" or "boss" to a definition.
func Find(query string) (Definition, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Definition{}, false
	}
	if d, ok := lo.Find(catalog, func(d Definition) bool {
		return strings.Contains(query, d.Title) || strings.EqualFold(query, d.ID)
	}); ok {
		return d, true
	}

	targets := lo.Map(catalog, func(d Definition, _ int) string { return d.Title + " " + d.ID })
	ranks := fuzzy.RankFindFold(query, targets)
	if len(ranks) == 0 {
		return Definition{}, false
	}
	sort.Stable(ranks)
	return catalog[ranks[0].OriginalIndex], true
}

// Available lists the challenges open to grade on the day of now.
func Available(grade shared.Grade, now time.Time) []Definition {
	weekend := timeutil.IsWeekend(now)
	return lo.Filter(catalog, func(d Definition, _ int) bool {
		if grade < d.MinGrade {
			return false
		}
		return d.ID != weekendOnlyID || weekend
	})
}

// FormatList renders today's challenge menu.
func FormatList(grade shared.Grade, now time.Time) string {
	available := Available(grade, now)
	if len(available) == 0 {
		return "今天暂时没有可用的挑战，明天再来吧！"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎮 今日挑战 (%d个可用)\n\n", len(available))
	for _, d := range available {
		fmt.Fprintf(&b, "🎯 %s\n", d.Name)
		fmt.Fprintf(&b, "   %s\n", d.Description)
		fmt.Fprintf(&b, "   基础分：%d分/题 | Bonus：+%d分\n", basePoints, d.BonusPoints)
		if d.Duration > 0 {
			fmt.Fprintf(&b, "   ⏱️ 限时：%d秒\n", int(d.Duration.Seconds()))
		}
		b.WriteString("\n")
	}
	b.WriteString("💡 输入\"开始挑战 [挑战名]\"来参与！\n例如：\"开始挑战 闪电计算\"")
	if !timeutil.IsWeekend(now) {
		b.WriteString("\n\n🌟 提示：周末有特别的\"周末冠军\"挑战哦！")
	}
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// Per-user record
// ══════════════════════════════════════════════════════════════════════════════

// Attempt is one finished challenge.
type Attempt struct {
	ChallengeID string        `json:"challenge_id"`
	Date        string        `json:"date"`
	Score       int           `json:"score"`
	Correct     int           `json:"correct"`
	Total       int           `json:"total"`
	Perfect     bool          `json:"perfect"`
	TimeSpent   time.Duration `json:"time_spent"`
}

// Start is one started challenge.
type Start struct {
	ChallengeID string `json:"challenge_id"`
	Date        string `json:"date"`
}

// Record is the per-user challenge document.
type Record struct {
	UserID         string         `json:"user_id"`
	CreatedAt      time.Time      `json:"created_at"`
	TotalCompleted int            `json:"total_completed"`
	TotalPoints    int            `json:"total_points"`
	PerfectStreak  int            `json:"perfect_streak"`
	ByType         map[string]int `json:"by_type"`
	Starts         []Start        `json:"starts"`
	Recent         []Attempt      `json:"recent"`
	Achievements   []string       `json:"achievements"`
	EarlyBird      int            `json:"early_bird_completed"`
	NightOwl       int            `json:"night_owl_completed"`
	LastChallenge  time.Time      `json:"last_challenge_at,omitempty"`
}

// NewRecord creates an empty record.
func NewRecord(userID string, now time.Time) *Record {
	return &Record{
		UserID:    userID,
		CreatedAt: now,
		ByType:    map[string]int{},
	}
}

// Normalize repairs a decoded document.
func (r *Record) Normalize(userID string, now time.Time) {
	if r.UserID == "" {
		*r = *NewRecord(userID, now)
		return
	}
	if r.ByType == nil {
		r.ByType = map[string]int{}
	}
}

// Begin starts d for a student of grade. It fails when the grade is too low,
// when a weekend-only challenge is started on a weekday, or when d was
// already started today. The returned text is the instructions card.
func (r *Record) Begin(d Definition, grade shared.Grade, now time.Time) (string, error) {
	if grade < d.MinGrade {
		return fmt.Sprintf("这个挑战适合%d年级及以上的小朋友", d.MinGrade),
			shared.NewDomainError("challenge", "Begin", shared.ErrValueOutOfRange, "grade too low")
	}
	if d.ID == weekendOnlyID && !timeutil.IsWeekend(now) {
		return "周末挑战只在周六、周日开放哦！",
			shared.NewDomainError("challenge", "Begin", shared.ErrInvalidInput, "weekend only")
	}

	today := timeutil.DayKey(now)
	if lo.ContainsBy(r.Starts, func(s Start) bool { return s.ChallengeID == d.ID && s.Date == today }) {
		return "今天已经开始过这个挑战了，明天再来吧！", shared.ErrChallengeDoneToday
	}

	r.Starts = append(lo.Filter(r.Starts, func(s Start, _ int) bool { return s.Date == today }),
		Start{ChallengeID: d.ID, Date: today})

	var b strings.Builder
	fmt.Fprintf(&b, "%s 挑战开始！\n\n", d.Name)
	fmt.Fprintf(&b, "📋 %s\n\n", d.Instructions)
	fmt.Fprintf(&b, "🏅 计分：基础%d分/题，Bonus +%d分/题，全对再加%d分", basePoints, d.BonusPoints, perfectBonus)
	if d.Duration > 0 {
		fmt.Fprintf(&b, "\n⏱️ 限时%d秒，准备好了吗？", int(d.Duration.Seconds()))
	}
	b.WriteString("\n\n完成后输入\"完成挑战 " + d.Title + " 答对数/总数\"，例如：\"完成挑战 " + d.Title + " 8/10\"")
	return b.String(), nil
}

// Result is what the student reports after a challenge.
type Result struct {
	Correct   int
	Total     int
	TimeSpent time.Duration
}

// Perfect reports whether every item was correct.
func (r Result) Perfect() bool {
	return r.Total > 0 && r.Correct == r.Total
}

// Score is the points awarded for one attempt.
type Score struct {
	Base  int
	Bonus int
	Total int
}

// Complete scores an attempt and returns any newly earned challenge badges.
func (r *Record) Complete(d Definition, res Result, now time.Time) (Score, []Badge, error) {
	if res.Total <= 0 || res.Correct < 0 || res.Correct > res.Total {
		return Score{}, nil, shared.NewDomainError("challenge", "Complete", shared.ErrValueOutOfRange, "invalid result")
	}

	score := Score{Base: res.Correct * basePoints, Bonus: res.Correct * d.BonusPoints}
	if res.Perfect() {
		score.Bonus += perfectBonus
		r.PerfectStreak++
	} else {
		r.PerfectStreak = 0
	}
	score.Total = score.Base + score.Bonus

	r.TotalCompleted++
	r.TotalPoints += score.Total
	r.ByType[d.ID]++
	r.LastChallenge = now
	r.Recent = append(r.Recent, Attempt{
		ChallengeID: d.ID,
		Date:        timeutil.DayKey(now),
		Score:       score.Total,
		Correct:     res.Correct,
		Total:       res.Total,
		Perfect:     res.Perfect(),
		TimeSpent:   res.TimeSpent,
	})
	if len(r.Recent) > maxRecent {
		r.Recent = r.Recent[len(r.Recent)-maxRecent:]
	}

	switch hour := timeutil.ToShanghai(now).Hour(); {
	case hour >= 6 && hour < 8:
		r.EarlyBird++
	case hour >= 20 && hour < 23:
		r.NightOwl++
	}

	return score, r.unlockBadges(), nil
}

// FormatScore renders the result of Complete.
func FormatScore(d Definition, s Score, streak int, badges []Badge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 完成挑战「%s」！\n\n", d.Title)
	fmt.Fprintf(&b, "基础分：%d\nBonus：%d\n总分：%d", s.Base, s.Bonus, s.Total)
	if streak >= 2 {
		fmt.Fprintf(&b, "\n\n💯 完美连击 ×%d！", streak)
	}
	for _, badge := range badges {
		fmt.Fprintf(&b, "\n\n🏆 获得挑战成就：%s %s - %s", badge.Icon, badge.Name, badge.Description)
	}
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// Challenge badges
// ══════════════════════════════════════════════════════════════════════════════

// Badge is a challenge-only achievement.
type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	condition   func(r *Record) bool
}

var badges = []Badge{
	{"first_challenge", "🎮 首次挑战", "完成第一个挑战", "🎮", func(r *Record) bool { return r.TotalCompleted >= 1 }},
	{"challenge_warrior", "⚔️ 挑战勇士", "完成10个挑战", "⚔️", func(r *Record) bool { return r.TotalCompleted >= 10 }},
	{"speed_demon", "⚡ 速度之王", "完成5个闪电计算挑战", "⚡", func(r *Record) bool { return r.ByType["speed_math"] >= 5 }},
	{"perfect_streak", "💯 完美三连", "连续3个挑战全部正确", "💯", func(r *Record) bool { return r.PerfectStreak >= 3 }},
	{"early_bird", "🌅 早起鸟", "早上6-8点完成一个挑战", "🌅", func(r *Record) bool { return r.EarlyBird >= 1 }},
	{"night_owl", "🦉 夜猫子", "晚上8-11点完成一个挑战", "🦉", func(r *Record) bool { return r.NightOwl >= 1 }},
	{"weekend_warrior", "🎯 周末战士", "完成5个周末挑战", "🎯", func(r *Record) bool { return r.ByType[weekendOnlyID] >= 5 }},
}

func (r *Record) unlockBadges() []Badge {
	fresh := lo.Filter(badges, func(b Badge, _ int) bool {
		return !lo.Contains(r.Achievements, b.ID) && b.condition(r)
	})
	r.Achievements = append(r.Achievements, lo.Map(fresh, func(b Badge, _ int) string { return b.ID })...)
	return fresh
}

// FormatBadges lists earned and up to four locked challenge badges.
func (r *Record) FormatBadges() string {
	earned, locked := lo.FilterReject(badges, func(b Badge, _ int) bool { return lo.Contains(r.Achievements, b.ID) })

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 挑战成就 (%d/%d)\n\n", len(earned), len(badges))
	if len(earned) > 0 {
		b.WriteString("已解锁\n")
		for _, a := range earned {
			fmt.Fprintf(&b, "%s %s - %s\n", a.Icon, a.Name, a.Description)
		}
		b.WriteString("\n")
	}
	if len(locked) > 0 {
		b.WriteString("🔒 待解锁\n")
		for _, a := range lo.Slice(locked, 0, 4) {
			fmt.Fprintf(&b, "%s %s\n", a.Icon, a.Name)
		}
		if len(locked) > 4 {
			fmt.Fprintf(&b, "...还有%d个", len(locked)-4)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
