// Package pet implements the virtual study companion. Studying earns the pet
// experience, feeding restores its energy, and levels unlock evolution stages.
package pet

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

// Type identifies a species.
type Type string

const (
	TypeDino   Type = "dino"
	TypeCat    Type = "cat"
	TypeDog    Type = "dog"
	TypePanda  Type = "panda"
	TypeDragon Type = "dragon"
)

// Species describes a pet type.
type Species struct {
	Type    Type
	Name    string
	Emoji   string
	Stages  [4]string
	aliases []string
}

var species = []Species{
	{TypeDino, "小恐龙豆豆", "🦖", [4]string{"🥚", "🦖", "🐉", "🐲"}, []string{"恐龙", "豆豆"}},
	{TypeCat, "小猫咪萌萌", "🐱", [4]string{"🐾", "😺", "😸", "😻"}, []string{"猫咪", "萌萌", "小猫"}},
	{TypeDog, "小狗旺财", "🐶", [4]string{"🐕", "🐩", "🐕‍🦺", "🦮"}, []string{"小狗", "旺财"}},
	{TypePanda, "小熊猫滚滚", "🐼", [4]string{"🐼", "🎋", "🏮", "👑"}, []string{"熊猫", "滚滚"}},
	{TypeDragon, "小龙人当当", "🐲", [4]string{"🐉", "🐲", "👑", "✨"}, []string{"龙人", "当当"}},
}

// AllSpecies returns the adoptable species in display order.
func AllSpecies() []Species {
	return append([]Species(nil), species...)
}

// LookupSpecies returns the species of a type.
func LookupSpecies(t Type) (Species, bool) {
	return lo.Find(species, func(s Species) bool { return s.Type == t })
}

// FindSpecies resolves free text such as "小恐龙" or "panda" to a species.
// Exact alias hits win; otherwise the closest fuzzy match is used.
func FindSpecies(query string) (Species, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Species{}, false
	}

	for _, s := range species {
		for _, kw := range append([]string{s.Name, string(s.Type)}, s.aliases...) {
			if strings.Contains(strings.ToLower(query), kw) {
				return s, true
			}
		}
	}

	var targets []string
	owners := map[int]Species{}
	for _, s := range species {
		for _, kw := range append([]string{s.Name, string(s.Type)}, s.aliases...) {
			owners[len(targets)] = s
			targets = append(targets, kw)
		}
	}
	ranks := fuzzy.RankFindFold(query, targets)
	if len(ranks) == 0 {
		return Species{}, false
	}
	sort.Stable(ranks)
	return owners[ranks[0].OriginalIndex], true
}

// Mood is how the pet feels.
type Mood string

const (
	MoodHappy       Mood = "happy"
	MoodExcited     Mood = "excited"
	MoodEncouraging Mood = "encouraging"
	MoodProud       Mood = "proud"
	MoodSleepy      Mood = "sleepy"
	MoodHungry      Mood = "hungry"
	MoodSad         Mood = "sad"
)

type moodInfo struct {
	text    string
	actions []string
}

var moods = map[Mood]moodInfo{
	MoodHappy:       {"开心", []string{"跳舞", "打滚", "摇尾巴", "转圈圈"}},
	MoodExcited:     {"兴奋", []string{"跳来跳去", "拍拍手", "大声欢呼"}},
	MoodEncouraging: {"加油", []string{"给你比心", "说悄悄话", "挥拳头"}},
	MoodProud:       {"骄傲", []string{"昂首挺胸", "闪闪发光", "接受赞美"}},
	MoodSleepy:      {"困了", []string{"打哈欠", "揉眼睛", "趴下"}},
	MoodHungry:      {"饿了", []string{"肚子叫", "眼巴巴看", "舔嘴唇"}},
	MoodSad:         {"难过", []string{"低头", "叹气", "眼泪汪汪"}},
}

// Food is something a pet can eat.
type Food struct {
	Name   string
	Emoji  string
	Energy int
	Pets   []Type
}

var foods = []Food{
	{"水果", "🍎", 10, []Type{TypeDino, TypeCat, TypeDog, TypePanda, TypeDragon}},
	{"糖果", "🍬", 15, []Type{TypeCat, TypeDog}},
	{"骨头", "🦴", 20, []Type{TypeDog}},
	{"竹子", "🎋", 20, []Type{TypePanda}},
	{"肉", "🍖", 25, []Type{TypeDino, TypeDog, TypeDragon}},
	{"星星", "⭐", 50, []Type{TypeDino, TypeCat, TypeDog, TypePanda, TypeDragon}},
}

// FindFood matches a food by name, or by the first food named inside text.
func FindFood(text string) (Food, bool) {
	text = strings.TrimSpace(text)
	if f, ok := lo.Find(foods, func(f Food) bool { return f.Name == text }); ok {
		return f, true
	}
	return lo.Find(foods, func(f Food) bool { return text != "" && strings.Contains(text, f.Name) })
}

const (
	maxEnergy          = 100
	energyDecayPerHour = 5
	initialExpToNext   = 100
	feedExp            = 10
	studyExp           = 5
)

// Pet is the per-user companion document.
type Pet struct {
	UserID               string    `json:"user_id"`
	Type                 Type      `json:"type"`
	Name                 string    `json:"name"`
	Emoji                string    `json:"emoji"`
	Stage                int       `json:"stage"`
	Level                int       `json:"level"`
	Exp                  int       `json:"exp"`
	ExpToNextLevel       int       `json:"exp_to_next_level"`
	Energy               int       `json:"energy"`
	Mood                 Mood      `json:"mood"`
	LastFedAt            time.Time `json:"last_fed_at"`
	LastStudyDate        string    `json:"last_study_date,omitempty"`
	TotalStudyDays       int       `json:"total_study_days"`
	ConsecutiveStudyDays int       `json:"consecutive_study_days"`
	Skills               []string  `json:"skills"`
	CreatedAt            time.Time `json:"created_at"`
}

// New creates a fresh pet; unknown types become a dino.
func New(userID string, t Type, now time.Time) *Pet {
	sp, ok := LookupSpecies(t)
	if !ok {
		sp = species[0]
	}
	return &Pet{
		UserID:         userID,
		Type:           sp.Type,
		Name:           sp.Name,
		Emoji:          sp.Emoji,
		Level:          1,
		ExpToNextLevel: initialExpToNext,
		Energy:         maxEnergy,
		Mood:           MoodHappy,
		LastFedAt:      now,
		Skills:         []string{"鼓励", "欢呼"},
		CreatedAt:      now,
	}
}

// Adopt replaces the user's pet with a new one of the species named in query.
func Adopt(userID, query string, now time.Time) (*Pet, error) {
	sp, ok := FindSpecies(query)
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownPetType, query)
	}
	return New(userID, sp.Type, now), nil
}

// Normalize repairs a decoded document.
func (p *Pet) Normalize(userID string, now time.Time) {
	if p.UserID == "" {
		*p = *New(userID, p.Type, now)
		return
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.ExpToNextLevel <= 0 {
		p.ExpToNextLevel = initialExpToNext
	}
	if p.Stage < 0 || p.Stage > 3 {
		p.Stage = 0
	}
}

func (p *Pet) species() Species {
	sp, ok := LookupSpecies(p.Type)
	if !ok {
		return species[0]
	}
	return sp
}

// StageEmoji is the emoji of the current evolution stage.
func (p *Pet) StageEmoji() string {
	return p.species().Stages[p.Stage]
}

// CurrentEnergy applies the hourly decay since the last feeding.
func (p *Pet) CurrentEnergy(now time.Time) int {
	hours := now.Sub(p.LastFedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return max(0, p.Energy-int(hours*energyDecayPerHour))
}

func (p *Pet) currentMood(energy int) Mood {
	switch {
	case energy < 30:
		return MoodHungry
	case energy < 50:
		return MoodSleepy
	default:
		return p.Mood
	}
}

// Status renders the pet card.
func (p *Pet) Status(now time.Time) string {
	energy := p.CurrentEnergy(now)
	mood := moods[p.currentMood(energy)]
	expPct := shared.Percent(p.Exp, p.ExpToNextLevel)

	energyBars := min(5, (energy+19)/20)
	expBars := min(5, (expPct+19)/20)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (Lv.%d)\n\n", p.StageEmoji(), p.Name, p.Level)
	b.WriteString("📊 状态\n")
	fmt.Fprintf(&b, "   心情：%s\n", mood.text)
	fmt.Fprintf(&b, "   能量：%s%s %d%%\n", strings.Repeat("🍖", energyBars), strings.Repeat("·", 5-energyBars), energy)
	fmt.Fprintf(&b, "   经验：%s%s %d%%\n", strings.Repeat("⭐", expBars), strings.Repeat("☆", 5-expBars), expPct)
	fmt.Fprintf(&b, "   连续学习：%d天\n\n", p.ConsecutiveStudyDays)
	fmt.Fprintf(&b, "✨ 技能：%s\n\n", strings.Join(p.Skills, "、"))
	fmt.Fprintf(&b, "💡 %s正在%s～", p.Name, lo.Sample(mood.actions))
	return b.String()
}

// Feed gives the pet a food it likes.
func (p *Pet) Feed(food Food, now time.Time) (string, error) {
	if !lo.Contains(food.Pets, p.Type) {
		liked := lo.FilterMap(foods, func(f Food, _ int) (string, bool) {
			return f.Name, lo.Contains(f.Pets, p.Type)
		})
		return fmt.Sprintf("%s不喜欢吃%s！\n\n%s喜欢吃：%s", p.Name, food.Name, p.Name, strings.Join(liked, "、")),
			shared.NewDomainError("pet", "Feed", shared.ErrInvalidInput, "food not liked")
	}

	p.Energy = min(maxEnergy, p.CurrentEnergy(now)+food.Energy)
	p.LastFedAt = now
	p.Mood = MoodHappy
	p.Exp += feedExp
	growth := p.grow()

	msg := fmt.Sprintf("%s %s开心地吃了%s%s！\n\n%s正在%s～\n\n能量+%d，经验+%d",
		p.Emoji, p.Name, food.Emoji, food.Name, p.Name, lo.Sample(moods[MoodHappy].actions), food.Energy, feedExp)
	if growth != "" {
		msg += "\n\n" + growth
	}
	return msg, nil
}

// StudyInteraction rewards the pet after a recorded answer.
func (p *Pet) StudyInteraction(now time.Time) string {
	p.Exp += studyExp
	p.Mood = MoodExcited

	today := timeutil.DayKey(now)
	if p.LastStudyDate != today {
		if p.LastStudyDate == timeutil.PreviousDayKey(now) {
			p.ConsecutiveStudyDays++
		} else {
			p.ConsecutiveStudyDays = 1
		}
		p.TotalStudyDays++
		p.LastStudyDate = today
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s看到你学习完，开心地%s！\n", p.Emoji, p.Name, lo.Sample(moods[MoodExcited].actions))
	fmt.Fprintf(&b, "⭐ 经验+%d", studyExp)
	if growth := p.grow(); growth != "" {
		b.WriteString("\n🎉 " + growth)
	}
	if p.ConsecutiveStudyDays >= 3 {
		fmt.Fprintf(&b, "\n🔥 已经连续学习%d天了！%s为你骄傲！", p.ConsecutiveStudyDays, p.Name)
	}
	return b.String()
}

// grow levels the pet up while it has enough experience and returns a
// message about the last level or evolution reached, or "".
func (p *Pet) grow() string {
	msg := ""
	for p.Exp >= p.ExpToNextLevel {
		p.Exp -= p.ExpToNextLevel
		p.Level++
		p.ExpToNextLevel = int(float64(p.ExpToNextLevel)*1.5 + 0.5)
		msg = fmt.Sprintf("🎊 %s升级到Lv.%d！", p.Name, p.Level)

		stage := p.Stage
		switch {
		case p.Level >= 10:
			stage = 3
		case p.Level >= 6:
			stage = max(stage, 2)
		case p.Level >= 3:
			stage = max(stage, 1)
		}
		if stage > p.Stage {
			p.Stage = stage
			if p.Stage == 3 {
				p.Skills = lo.Uniq(append(p.Skills, "进化"))
			} else {
				p.Skills = lo.Uniq(append(p.Skills, "跳舞", "陪伴学习"))
			}
			msg = fmt.Sprintf("%s进化成%s啦！", p.Name, p.StageEmoji())
		}
	}
	return msg
}

// Encourage returns a cheer line from the pet.
func (p *Pet) Encourage() string {
	action := lo.Sample(moods[MoodEncouraging].actions)
	return lo.Sample([]string{
		fmt.Sprintf("%s %s说：\"加油！你一定可以的！\"", p.Emoji, p.Name),
		fmt.Sprintf("%s %s为你%s：\"相信你自己！\"", p.Emoji, p.Name, action),
		fmt.Sprintf("%s %s拍拍你的肩膀：\"别放弃，继续努力！\"", p.Emoji, p.Name),
		fmt.Sprintf("%s %s握紧拳头：\"冲冲冲！\"", p.Emoji, p.Name),
	})
}

// FormatSelection lists the adoptable species.
func FormatSelection() string {
	var b strings.Builder
	b.WriteString("🐾 选择你的学习伙伴\n\n")
	for _, s := range species {
		fmt.Fprintf(&b, "%s %s\n   成长：%s\n\n", s.Emoji, s.Name, strings.Join(s.Stages[:], " → "))
	}
	b.WriteString("💡 输入\"领养[宠物名]\"\n例如：\"领养小恐龙\" 或 \"领养小猫咪\"")
	return b.String()
}

// FoodNames lists every food.
func FoodNames() []string {
	return lo.Map(foods, func(f Food, _ int) string { return f.Name })
}
