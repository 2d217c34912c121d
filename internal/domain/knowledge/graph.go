// Package knowledge derives the per-topic mastery map from the progress ledger.
package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// Status is the mastery state of one topic.
type Status string

const (
	StatusMastered   Status = "mastered"
	StatusInProgress Status = "in-progress"
	StatusNeedsWork  Status = "needs-work"
	StatusLocked     Status = "locked"
)

var statusIcons = map[Status]string{
	StatusMastered:   "🟢",
	StatusInProgress: "🟡",
	StatusNeedsWork:  "🔴",
	StatusLocked:     "⚪",
}

const (
	masteredAt       = 80
	needsWorkBelow   = 50
	strongMinAnswers = 3
	weakMinAnswers   = 2
	maxListed        = 5
	fullProgressAt   = 10
)

// Point is a knowledge point in the catalog.
type Point struct {
	Topic     shared.Topic
	MinGrade  shared.Grade
	Subtopics []string
}

var catalog = map[shared.Subject][]Point{
	shared.SubjectMath: {
		{shared.TopicAddition, 2, []string{"100以内加减", "万以内加减", "小数加减"}},
		{shared.TopicSubtraction, 2, []string{"100以内减法", "退位减法", "连减"}},
		{shared.TopicMultiplication, 2, []string{"乘法口诀", "表内乘法", "小数乘整数"}},
		{shared.TopicDivision, 2, []string{"表内除法", "除数是整十数", "小数除法"}},
		{shared.TopicMixed, 3, []string{"运算顺序", "带括号运算", "简便计算"}},
		{shared.TopicFraction, 3, []string{"分数的认识", "分数加减", "分数比较"}},
		{shared.TopicDecimal, 3, []string{"小数的认识", "小数加减", "小数乘除"}},
		{shared.TopicPercentage, 5, []string{"百分数认识", "百分数应用"}},
		{shared.TopicGeometry, 2, []string{"认识图形", "面积周长", "立体图形"}},
		{shared.TopicApplication, 2, []string{"简单应用", "复合应用", "典型问题"}},
	},
	shared.SubjectEnglish: {
		{shared.TopicVocabulary, 2, []string{"颜色数字", "日常词汇", "进阶词汇"}},
		{shared.TopicGrammar, 3, []string{"单复数", "时态", "句型结构"}},
		{shared.TopicReading, 2, []string{"短文阅读", "理解问题", "阅读策略"}},
		{shared.TopicWriting, 4, []string{"句子仿写", "段落写作", "短文写作"}},
	},
	shared.SubjectChinese: {
		{shared.TopicCharacters, 2, []string{"生字学习", "词语积累", "错别字"}},
		{shared.TopicReadingComprehension, 2, []string{"理解词句", "段落分析", "主旨概括"}},
		{shared.TopicComposition, 2, []string{"看图写话", "命题作文", "读后感"}},
		{shared.TopicPoetry, 2, []string{"背诵默写", "诗意理解", "诗人简介"}},
	},
}

// Points returns the catalog for a subject.
func Points(s shared.Subject) []Point {
	return append([]Point(nil), catalog[s]...)
}

// Node is a topic with the student's standing.
type Node struct {
	Point
	Status   Status
	Progress int // 0-100, ten answers fill the bar
	Accuracy int
	Answered int
}

// SubjectGraph is one subject's nodes.
type SubjectGraph struct {
	Subject  shared.Subject
	Total    int
	Correct  int
	Accuracy int
	Nodes    []Node
}

// Overview is the headline of the graph.
type Overview struct {
	Total    int
	Correct  int
	Accuracy int
	Streak   int
	Grade    shared.Grade
}

// Graph is the full mastery map of one student.
type Graph struct {
	Overview    Overview
	Subjects    []SubjectGraph
	Strong      []string
	Weak        []string
	Suggestions []string
}

type scored struct {
	subject  shared.Subject
	topic    shared.Topic
	accuracy int
	total    int
}

// Build derives the graph from a ledger.
func Build(p *progress.Progress) Graph {
	g := Graph{Overview: Overview{
		Total:    p.TotalQuestions,
		Correct:  p.CorrectAnswers,
		Accuracy: shared.Percent(p.CorrectAnswers, p.TotalQuestions),
		Streak:   p.Streak,
		Grade:    p.Grade,
	}}

	var all []scored
	for _, s := range shared.AllSubjects() {
		stats := p.Subject(s)
		sg := SubjectGraph{
			Subject:  s,
			Total:    stats.Questions,
			Correct:  stats.Correct,
			Accuracy: shared.Percent(stats.Correct, stats.Questions),
		}
		for _, pt := range catalog[s] {
			sg.Nodes = append(sg.Nodes, node(pt, stats.Topics[pt.Topic]))
		}
		g.Subjects = append(g.Subjects, sg)

		for topic, ts := range stats.Topics {
			all = append(all, scored{s, topic, ts.Accuracy(), ts.Total})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].accuracy != all[j].accuracy {
			return all[i].accuracy > all[j].accuracy
		}
		if all[i].subject != all[j].subject {
			return all[i].subject < all[j].subject
		}
		return all[i].topic < all[j].topic
	})

	g.Strong = label(lo.Filter(all, func(t scored, _ int) bool {
		return t.accuracy >= masteredAt && t.total >= strongMinAnswers
	}))
	weak := lo.Filter(all, func(t scored, _ int) bool {
		return t.accuracy < progress.WeakPointThreshold && t.total >= weakMinAnswers
	})
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].accuracy < weak[j].accuracy })
	g.Weak = label(weak)
	g.Suggestions = suggestions(p, g.Weak)
	return g
}

func node(pt Point, ts progress.TopicStats) Node {
	n := Node{Point: pt, Status: StatusLocked}
	if ts.Total == 0 {
		return n
	}
	n.Answered = ts.Total
	n.Accuracy = ts.Accuracy()
	n.Progress = min(100, shared.Percent(ts.Total, fullProgressAt))
	switch {
	case n.Accuracy >= masteredAt:
		n.Status = StatusMastered
	case n.Accuracy < needsWorkBelow:
		n.Status = StatusNeedsWork
	default:
		n.Status = StatusInProgress
	}
	return n
}

func label(ts []scored) []string {
	return lo.Map(lo.Slice(ts, 0, maxListed), func(t scored, _ int) string {
		return t.subject.DisplayName() + " - " + t.topic.DisplayName()
	})
}

func suggestions(p *progress.Progress, weak []string) []string {
	if p.TotalQuestions == 0 {
		return []string{"今天还没有开始学习哦，快来出几道题吧！"}
	}

	var out []string
	if len(weak) > 0 {
		out = append(out, "📚 推荐重点复习："+strings.Join(lo.Slice(weak, 0, 3), "、"))
	}

	switch {
	case p.Streak >= 3:
		out = append(out, "🔥 连续学习好几天了！你的毅力很棒！继续保持！")
	case p.Streak == 0:
		out = append(out, "💪 今天开始新的学习之旅吧！")
	}

	least := lo.MinBy(shared.AllSubjects(), func(a, b shared.Subject) bool {
		return p.Subject(a).Questions < p.Subject(b).Questions
	})
	if p.Subject(least).Questions < 5 {
		out = append(out, fmt.Sprintf("📖 %s练习有点少哦，建议加强一下！", least.DisplayName()))
	}

	switch acc := shared.Percent(p.CorrectAnswers, p.TotalQuestions); {
	case acc < 50:
		out = append(out, "💡 正确率还可以提高，建议做完题后仔细看看解析哦！")
	case acc >= 90:
		out = append(out, "🌟 正确率很高！你已经掌握得很好了！")
	}
	return out
}

// Format renders the graph as text.
func (g Graph) Format() string {
	var b strings.Builder
	b.WriteString("📊 知识掌握图谱\n\n")
	b.WriteString("总览\n")
	fmt.Fprintf(&b, "📝 总题数：%d\n", g.Overview.Total)
	fmt.Fprintf(&b, "✅ 正确数：%d\n", g.Overview.Correct)
	fmt.Fprintf(&b, "📈 正确率：%d%%\n", g.Overview.Accuracy)
	fmt.Fprintf(&b, "🔥 连续学习：%d天\n\n", g.Overview.Streak)

	for _, sg := range g.Subjects {
		fmt.Fprintf(&b, "%s (%d%%)\n", sg.Subject.DisplayName(), sg.Accuracy)
		for _, n := range sg.Nodes {
			fmt.Fprintf(&b, "  %s %s", statusIcons[n.Status], n.Topic.DisplayName())
			if n.Answered > 0 {
				fmt.Fprintf(&b, " %d%%", n.Accuracy)
			} else if n.MinGrade > g.Overview.Grade {
				fmt.Fprintf(&b, " (%d年级)", n.MinGrade)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(g.Strong) > 0 {
		fmt.Fprintf(&b, "🌟 强项\n%s\n\n", strings.Join(g.Strong, "、"))
	}
	if len(g.Weak) > 0 {
		fmt.Fprintf(&b, "📚 待加强\n%s\n\n", strings.Join(g.Weak, "、"))
	}
	if len(g.Suggestions) > 0 {
		b.WriteString("💡 学习建议\n")
		b.WriteString(strings.Join(g.Suggestions, "\n"))
	}
	return strings.TrimRight(b.String(), "\n")
}
