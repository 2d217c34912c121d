// Package achievement awards badges derived from the progress ledger.
// Badges are never stored: a badge is earned whenever its condition holds.
package achievement

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// Achievement is one badge.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	condition   func(p *progress.Progress) bool
}

func subjectAtLeast(s shared.Subject, n int) func(p *progress.Progress) bool {
	return func(p *progress.Progress) bool { return p.Subject(s).Questions >= n }
}

func accuracyAtLeast(minQuestions int, ratio float64) func(p *progress.Progress) bool {
	return func(p *progress.Progress) bool {
		if p.TotalQuestions < minQuestions {
			return false
		}
		return float64(p.CorrectAnswers)/float64(p.TotalQuestions) >= ratio
	}
}

// catalog is ordered; listings and celebrations follow this order.
var catalog = []Achievement{
	{"first_question", "🎯 初露锋芒", "完成第一道题目", "🎯", func(p *progress.Progress) bool { return p.TotalQuestions >= 1 }},
	{"first_day", "🌅 第一天", "开始学习之旅", "🌅", func(p *progress.Progress) bool { return p.TotalQuestions >= 1 }},
	{"ten_questions", "📝 十题达人", "完成10道题目", "📝", func(p *progress.Progress) bool { return p.TotalQuestions >= 10 }},
	{"fifty_questions", "📚 学富五车", "完成50道题目", "📚", func(p *progress.Progress) bool { return p.TotalQuestions >= 50 }},
	{"hundred_questions", "🏆 百题斩", "完成100道题目", "🏆", func(p *progress.Progress) bool { return p.TotalQuestions >= 100 }},
	{"streak_3", "🔥 三天打鱼", "连续学习3天", "🔥", func(p *progress.Progress) bool { return p.Streak >= 3 }},
	{"streak_7", "🌟 一周坚持", "连续学习7天", "🌟", func(p *progress.Progress) bool { return p.Streak >= 7 }},
	{"streak_30", "💪 月度学习者", "连续学习30天", "💪", func(p *progress.Progress) bool { return p.Streak >= 30 }},
	{"accuracy_80", "🎯 80%准确率", "正确率达到80%", "🎯", accuracyAtLeast(10, 0.8)},
	{"accuracy_90", "🌟 90%准确率", "正确率达到90%", "🌟", accuracyAtLeast(20, 0.9)},
	{"perfect_score", "💯 满分高手", "一次练习全部正确", "💯", func(p *progress.Progress) bool {
		return p.CorrectAnswers >= 5 && p.TotalQuestions >= 5
	}},
	{"math_master", "🔢 数学小达人", "完成20道数学题", "🔢", subjectAtLeast(shared.SubjectMath, 20)},
	{"english_master", "📖 英语小达人", "完成20道英语题", "📖", subjectAtLeast(shared.SubjectEnglish, 20)},
	{"chinese_master", "📕 语文小达人", "完成20道语文题", "📕", subjectAtLeast(shared.SubjectChinese, 20)},
	{"all_subjects", "🎓 三科全能", "每科都完成至少10道题", "🎓", func(p *progress.Progress) bool {
		return p.Subject(shared.SubjectMath).Questions >= 10 &&
			p.Subject(shared.SubjectEnglish).Questions >= 10 &&
			p.Subject(shared.SubjectChinese).Questions >= 10
	}},
	{"learn_from_mistakes", "📖 错题本", "记录5道错题并复习", "📖", func(p *progress.Progress) bool { return len(p.WrongQuestions) >= 5 }},
}

// All returns every badge in catalog order.
func All() []Achievement {
	return append([]Achievement(nil), catalog...)
}

// Unlocked returns the badges whose condition holds for p.
func Unlocked(p *progress.Progress) []Achievement {
	if p == nil {
		return nil
	}
	return lo.Filter(catalog, func(a Achievement, _ int) bool { return a.condition(p) })
}

// Locked returns the badges not yet earned.
func Locked(p *progress.Progress) []Achievement {
	earned := lo.Map(Unlocked(p), func(a Achievement, _ int) string { return a.ID })
	return lo.Filter(catalog, func(a Achievement, _ int) bool { return !lo.Contains(earned, a.ID) })
}

// NewlyUnlocked returns badges earned by after but not by before.
func NewlyUnlocked(before, after *progress.Progress) []Achievement {
	had := lo.Map(Unlocked(before), func(a Achievement, _ int) string { return a.ID })
	return lo.Filter(Unlocked(after), func(a Achievement, _ int) bool { return !lo.Contains(had, a.ID) })
}

// Format lists earned badges and up to three locked ones.
func Format(p *progress.Progress) string {
	earned := Unlocked(p)
	if len(earned) == 0 {
		return "还没有获得任何成就，继续加油！多做题目就能获得勋章哦～"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 成就勋章 (%d/%d)\n\n", len(earned), len(catalog))
	for _, a := range earned {
		fmt.Fprintf(&b, "%s %s - %s\n", a.Icon, a.Name, a.Description)
	}

	locked := Locked(p)
	if len(locked) > 0 {
		b.WriteString("\n🔒 待解锁成就：\n")
		for _, a := range lo.Slice(locked, 0, 3) {
			fmt.Fprintf(&b, "%s %s\n", a.Icon, a.Name)
		}
		if len(locked) > 3 {
			fmt.Fprintf(&b, "...还有%d个", len(locked)-3)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var celebrations = []string{
	"🎉 恭喜获得成就：「%s」！",
	"🌟 太棒了！解锁了新成就：「%s」！",
	"🎊 厉害！获得了「%s」勋章！",
	"🏆 恭喜！这是你的新成就：「%s」！",
}

// Celebrate renders the announcement for a newly earned badge.
func Celebrate(a Achievement) string {
	return fmt.Sprintf(lo.Sample(celebrations), a.Name) + "\n" + a.Description
}

// NextGoal hints at the closest badge still within reach.
func NextGoal(p *progress.Progress) string {
	switch {
	case p.TotalQuestions < 10:
		return fmt.Sprintf("📝 再做%d道题就能获得\"十题达人\"成就！", 10-p.TotalQuestions)
	case p.Streak < 3:
		return fmt.Sprintf("🔥 再连续学习%d天就能解锁\"三天打鱼\"成就！", 3-p.Streak)
	}
	for _, s := range shared.AllSubjects() {
		if n := p.Subject(s).Questions; n < 20 {
			return fmt.Sprintf("%s 再做%d道%s题就能获得\"%s小达人\"！", subjectIcon(s), 20-n, s.DisplayName(), s.DisplayName())
		}
	}
	return "🎉 你已经完成了很多目标！保持下去！"
}

func subjectIcon(s shared.Subject) string {
	switch s {
	case shared.SubjectMath:
		return "🔢"
	case shared.SubjectEnglish:
		return "📖"
	default:
		return "📕"
	}
}
