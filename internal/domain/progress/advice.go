package progress

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// Adaptive practice
// Difficulty follows accuracy: a topic needs topicMinAttempts answers before
// its own accuracy counts, otherwise the subject needs subjectMinAttempts.
// Below both the ledger expresses no preference.
// ══════════════════════════════════════════════════════════════════════════════

const (
	topicMinAttempts   = 3
	subjectMinAttempts = 10

	hardFrom   = 80
	mediumFrom = 60

	// MaxReviewTopics bounds how many topics one review set covers.
	MaxReviewTopics = 3
)

// DifficultyFor picks the difficulty of the next practice set. An empty
// result means any difficulty.
func (p *Progress) DifficultyFor(subject shared.Subject, topic *shared.Topic) shared.Difficulty {
	stats := p.Subjects[subject]
	if topic != nil {
		if ts := stats.Topics[*topic]; ts.Total >= topicMinAttempts {
			return difficultyForAccuracy(ts.Accuracy())
		}
	}
	if stats.Questions >= subjectMinAttempts {
		return difficultyForAccuracy(shared.Percent(stats.Correct, stats.Questions))
	}
	return ""
}

func difficultyForAccuracy(accuracy int) shared.Difficulty {
	switch {
	case accuracy >= hardFrom:
		return shared.DifficultyHard
	case accuracy >= mediumFrom:
		return shared.DifficultyMedium
	default:
		return shared.DifficultyEasy
	}
}

// ReviewTopics returns the distinct topics of the subject's wrong questions,
// most recent mistake first, at most MaxReviewTopics.
func (p *Progress) ReviewTopics(subject shared.Subject) []shared.Topic {
	wrong := lo.Filter(lo.Reverse(append([]WrongQuestion{}, p.WrongQuestions...)), func(w WrongQuestion, _ int) bool {
		return w.Subject == subject && w.Topic != ""
	})
	topics := lo.Uniq(lo.Map(wrong, func(w WrongQuestion, _ int) shared.Topic { return w.Topic }))
	if len(topics) > MaxReviewTopics {
		topics = topics[:MaxReviewTopics]
	}
	return topics
}

// LatestWrongSubject returns the subject of the most recent mistake.
func (p *Progress) LatestWrongSubject() (shared.Subject, bool) {
	if len(p.WrongQuestions) == 0 {
		return "", false
	}
	return p.WrongQuestions[len(p.WrongQuestions)-1].Subject, true
}

// ══════════════════════════════════════════════════════════════════════════════
// Study suggestions
// ══════════════════════════════════════════════════════════════════════════════

// Suggestions returns per-subject advice followed by streak and wrong-book hints.
func (p *Progress) Suggestions() []string {
	var out []string
	for _, s := range shared.AllSubjects() {
		stats := p.Subjects[s]
		name := s.DisplayName()
		if stats.Questions == 0 {
			out = append(out, fmt.Sprintf("📖 %s：还没开始学习，快来试试吧！", name))
			continue
		}

		accuracy := shared.Percent(stats.Correct, stats.Questions)
		switch {
		case accuracy >= hardFrom:
			out = append(out, fmt.Sprintf("🌟 %s掌握得很好（%d%%），可以尝试挑战更高难度的题目！", name, accuracy))
		case accuracy >= mediumFrom:
			out = append(out, fmt.Sprintf("💪 %s还不错（%d%%），继续保持！", name, accuracy))
		default:
			out = append(out, fmt.Sprintf("📚 %s需要加强（%d%%），建议多做一些练习题。", name, accuracy))
			weak := lo.FilterMap(p.WeakPoints(), func(wp WeakPoint, _ int) (string, bool) {
				return wp.Topic.DisplayName(), wp.Subject == s
			})
			if len(weak) > MaxReviewTopics {
				weak = weak[:MaxReviewTopics]
			}
			if len(weak) > 0 {
				out = append(out, "   重点复习："+strings.Join(weak, "、"))
			}
		}
	}

	switch {
	case p.Streak >= 3:
		out = append(out, fmt.Sprintf("🔥 太棒了！已经连续学习%d天！你的毅力很棒！", p.Streak))
	case p.Streak == 0 && p.TotalQuestions > 0:
		out = append(out, "📅 今天还没开始学习吧？快来完成第一个任务！")
	}
	if len(p.WrongQuestions) >= 5 {
		out = append(out, "📝 错题本里有很多题目哦，输入\"错题练习\"复习一下吧！")
	}
	return out
}

// FormatSuggestions renders Suggestions as one chat message.
func FormatSuggestions(items []string) string {
	return "💡 学习建议\n\n" + strings.Join(items, "\n")
}
