package intent

import (
	"regexp"

	"github.com/xuexi-helper/study-helper/internal/domain/shared"
)

// group is one intent with the patterns that select it.
type group struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// groups is evaluated in order; the first group with any matching pattern wins.
var groups = []group{
	{IntentGreeting, compile(
		`(?i)^(你好|hi|hello|嗨|在吗|在不在)`,
		`(早安|晚安|早上好|下午好)`,
		`(?i)^(hi|hey)`,
	)},
	{IntentGenerateQuestions, compile(
		`出.*题|出.*道`,
		`做.*[题卷子练习]`,
		`练习.*题`,
		`我要.*题`,
		`给.*练习`,
		`来.*题`,
		`测试.*一下`,
		`(想做|要做).*(练习|题)`,
		`年级.*题`,
		`^(数学|英语|语文|计算|应用)题`,
	)},
	{IntentAnswerQuestion, compile(
		`为什么`,
		`什么是`,
		`什么意思`,
		`怎么`,
		`解释`,
		`不懂`,
		`不理解`,
		`不明白`,
	)},
	{IntentExplainConcept, compile(
		`讲.*一下`,
		`教.*一下`,
		`教.*怎么`,
		`讲讲`,
		`说.*是什么`,
	)},
	{IntentCheckAnswer, compile(
		`对不对`,
		`正确吗`,
		`帮我.*看看`,
		`这样.*对吗`,
		`答案.*是`,
		`我.*得.*分`,
	)},
	{IntentRequestHelp, compile(
		`帮.*一下`,
		`帮帮我`,
		`救命`,
		`不会.*做`,
		`做.*不来`,
		`帮我检查`,
	)},
	{IntentPraiseEncourage, compile(
		`做完了`,
		`做好了`,
		`完成了`,
		`对了`,
		`懂啦`,
	)},
	{IntentChangeSubject, compile(
		`换.*科`,
		`换个.*学`,
		`学.*英语`,
		`学.*数学`,
		`学.*语文`,
	)},
	{IntentFeedback, compile(
		`太难了`,
		`太简单`,
		`没挑战`,
		`没意思`,
		`不喜欢`,
	)},
}

// subjectKeywords are matched against lower-cased text in AllSubjects order.
var subjectKeywords = map[shared.Subject][]string{
	shared.SubjectMath:    {"数学", "计算", "加减乘除", "分数", "几何", "应用题", "乘法", "除法", "小数", "百分数"},
	shared.SubjectEnglish: {"英语", "english", "单词", "vocabulary", "阅读", "听力", "语法", "句子", "字母", "作文"},
	shared.SubjectChinese: {"语文", "阅读", "作文", "生字", "古诗", "背诵", "词语", "成语", "默写", "写字"},
}

type topicRule struct {
	topic    shared.Topic
	keywords []string
}

// topicRules is ordered; the first rule with a keyword contained in the text wins.
var topicRules = []topicRule{
	{shared.TopicAddition, []string{"加法", "减法", "加减", "运算"}},
	{shared.TopicMultiplication, []string{"乘法", "乘", "口诀"}},
	{shared.TopicDivision, []string{"除法", "除", "除以"}},
	{shared.TopicFraction, []string{"分数", "几分之几"}},
	{shared.TopicDecimal, []string{"小数", "小数点"}},
	{shared.TopicGeometry, []string{"图形", "面积", "周长", "三角形", "正方形"}},
	{shared.TopicVocabulary, []string{"单词", "词汇", "背单词"}},
	{shared.TopicGrammar, []string{"语法", "时态", "词性"}},
	{shared.TopicReading, []string{"阅读", "读文章"}},
	{shared.TopicWriting, []string{"写作", "作文", "写句子"}},
	{shared.TopicCharacters, []string{"生字", "识字", "写字"}},
	{shared.TopicReadingComprehension, []string{"阅读理解", "理解"}},
	{shared.TopicComposition, []string{"作文", "写作文", "写话"}},
	{shared.TopicPoetry, []string{"古诗", "古诗词", "背诵"}},
}

var (
	gradeHanPattern   = regexp.MustCompile(`([一二三四五六])年级`)
	gradeDigitPattern = regexp.MustCompile(`(\d)\s*年级`)
	countPattern      = regexp.MustCompile(`\d+`)
)

var hanDigits = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5, "六": 6,
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}
