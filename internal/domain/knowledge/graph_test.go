package knowledge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

func answer(p *progress.Progress, s shared.Subject, topic shared.Topic, correct, wrong int) {
	now := time.Now()
	q := question.Question{Text: "q", Answer: "a"}
	for i := 0; i < correct; i++ {
		p.Record(s, topic, true, q, now)
	}
	for i := 0; i < wrong; i++ {
		p.Record(s, topic, false, q, now)
	}
}

func nodeFor(t *testing.T, g Graph, s shared.Subject, topic shared.Topic) Node {
	t.Helper()
	for _, sg := range g.Subjects {
		if sg.Subject != s {
			continue
		}
		for _, n := range sg.Nodes {
			if n.Topic == topic {
				return n
			}
		}
	}
	t.Fatalf("no node %s/%s", s, topic)
	return Node{}
}

func TestBuild_Empty(t *testing.T) {
	g := Build(progress.New("u", time.Now()))

	require.Len(t, g.Subjects, 3)
	assert.Len(t, g.Subjects[0].Nodes, len(Points(shared.SubjectMath)))
	assert.Equal(t, StatusLocked, nodeFor(t, g, shared.SubjectMath, shared.TopicFraction).Status)
	assert.Empty(t, g.Strong)
	assert.Empty(t, g.Weak)
	assert.Equal(t, []string{"今天还没有开始学习哦，快来出几道题吧！"}, g.Suggestions)
}

func TestBuild_Statuses(t *testing.T) {
	p := progress.New("u", time.Now())
	answer(p, shared.SubjectMath, shared.TopicAddition, 4, 1)   // 80%
	answer(p, shared.SubjectMath, shared.TopicFraction, 1, 1)   // 50%
	answer(p, shared.SubjectEnglish, shared.TopicGrammar, 1, 3) // 25%
	answer(p, shared.SubjectChinese, shared.TopicPoetry, 12, 0) // 100%

	g := Build(p)

	add := nodeFor(t, g, shared.SubjectMath, shared.TopicAddition)
	assert.Equal(t, StatusMastered, add.Status)
	assert.Equal(t, 50, add.Progress)

	assert.Equal(t, StatusInProgress, nodeFor(t, g, shared.SubjectMath, shared.TopicFraction).Status)
	assert.Equal(t, StatusNeedsWork, nodeFor(t, g, shared.SubjectEnglish, shared.TopicGrammar).Status)
	assert.Equal(t, 100, nodeFor(t, g, shared.SubjectChinese, shared.TopicPoetry).Progress)

	assert.Equal(t, []string{"语文 - 古诗词", "数学 - 加法"}, g.Strong)
	assert.Equal(t, []string{"英语 - 语法", "数学 - 分数"}, g.Weak)
}

func TestBuild_Suggestions(t *testing.T) {
	p := progress.New("u", time.Now())
	answer(p, shared.SubjectMath, shared.TopicDivision, 0, 4)

	g := Build(p)
	assert.Contains(t, g.Suggestions, "📚 推荐重点复习：数学 - 除法")
	assert.Contains(t, g.Suggestions, "📖 英语练习有点少哦，建议加强一下！")
	assert.Contains(t, g.Suggestions, "💡 正确率还可以提高，建议做完题后仔细看看解析哦！")

	p = progress.New("u", time.Now())
	for _, s := range shared.AllSubjects() {
		answer(p, s, shared.TopicMixed, 10, 0)
	}
	p.Streak = 4
	g = Build(p)
	assert.Contains(t, g.Suggestions, "🔥 连续学习好几天了！你的毅力很棒！继续保持！")
	assert.Contains(t, g.Suggestions, "🌟 正确率很高！你已经掌握得很好了！")
}

func TestFormat(t *testing.T) {
	p := progress.New("u", time.Now())
	p.Grade = 2
	answer(p, shared.SubjectMath, shared.TopicAddition, 3, 0)

	text := Build(p).Format()
	assert.Contains(t, text, "📊 知识掌握图谱")
	assert.Contains(t, text, "📈 正确率：100%")
	assert.Contains(t, text, "数学 (100%)")
	assert.Contains(t, text, "  🟢 加法 100%")
	assert.Contains(t, text, "  ⚪ 百分数 (5年级)")
	assert.Contains(t, text, "🌟 强项\n数学 - 加法")
	assert.Contains(t, text, "💡 学习建议")
}
