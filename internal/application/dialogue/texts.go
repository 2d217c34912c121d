package dialogue

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/session"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// Interaction texts
// ══════════════════════════════════════════════════════════════════════════════

var welcomeTexts = map[timeutil.Period][]string{
	timeutil.PeriodMorning: {
		"早上好！新的一天，从学习开始！☀️",
		"早安！今天想学点什么有趣的内容呢？",
	},
	timeutil.PeriodAfternoon: {
		"下午好！午休后的大脑最清醒啦～",
		"下午好！来点有趣的学习吧！",
	},
	timeutil.PeriodEvening: {
		"晚上好！今天学习辛苦了～",
		"晚间学习时光，一起加油吧！🌙",
	},
}

const firstTimeHint = "\n\n你可以告诉我：\n📚 \"出5道数学题\"\n📖 \"我想做英语阅读\"\n✍️ \"帮我解释一下这个概念\""

var (
	correctTexts = []string{
		"太棒了！完全正确！🌟",
		"答对了！继续保持哦！",
		"厉害！这就是正确答案！",
		"完全正确！你的学习能力很强！",
		"答对啦！给自己鼓掌吧！👏",
	}
	attemptTexts = []string{
		"勇于尝试就是进步！👍",
		"没关系，我们一起看看怎么做好吗？",
		"你已经很努力了！让我们一起学习！",
		"没关系，每一次尝试都是进步！",
		"别担心，错了也是学习的过程！",
	}
	completeTexts = []string{
		"全部完成！你太厉害了！🎉",
		"太棒了！这组练习全部完成！",
		"全部做完啦！给自己一个大大的赞！",
		"完成得很好！你很认真！",
		"全部正确！你是学习小明星！⭐",
	}
)

const helpText = `📚 我可以帮你做的事情：

🎯 出题练习
- "出5道数学题"
- "二年级英语题"
- "来点语文练习"

💡 答疑解惑
- "分数是什么意思？"
- "给我讲讲这个知识点"

📊 学习记录
- "进度" / "学习报告"
- "日报" / "周报" / "月报"
- "错题本" / "错题练习"
- "学习建议"
- "成就"
- "知识图谱"

🎮 更多玩法
- "今日任务" / "本周统计" / "设置目标 数学 8"
- "挑战" / "开始挑战 闪电计算" / "完成挑战 闪电计算 8/10"
- "宠物" / "领养小熊猫" / "喂食竹子"
- "小队" / "创建小队 数学小分队" / "加入小队 邀请码" / "小队排行" / "团队任务" / "退出小队"

有什么想问的或者想学的，尽管告诉我吧！`

func welcome(period timeutil.Period, firstTime bool) string {
	texts, ok := welcomeTexts[period]
	if !ok {
		texts = welcomeTexts[timeutil.PeriodEvening]
	}
	msg := lo.Sample(texts)
	if firstTime {
		msg += firstTimeHint
	}
	return msg
}

// blankInputPrompt answers an empty message. Mid-quiz it repeats the current
// question instead of grading nothing.
func blankInputPrompt(sess *session.Session) string {
	if q, err := sess.CurrentQuestion(); err == nil {
		return fmt.Sprintf("说点什么吧～把答案发给我就好。\n\n%s", q.Prompt(sess.State.CurrentQuestionIndex+1))
	}
	return "说点什么吧～想做题、问问题都可以。输入\"帮助\"看看我会什么！"
}

func unsupportedGradeNote(current shared.Grade) string {
	return fmt.Sprintf("小提示：学习小助手目前只支持二到五年级哦，我们先按%s的内容来学习吧～", current.Chinese())
}

func subjectSwitchPrompt(subject *shared.Subject) string {
	if subject == nil {
		return "你想换成哪一科？数学、英语还是语文？"
	}
	return fmt.Sprintf("好的，我们来学%s吧！📚\n想做练习题，还是听我讲讲知识点？试试说\"出5道%s题\"～",
		subject.DisplayName(), subject.DisplayName())
}

func explanationRequest(grade shared.Grade, subject *shared.Subject, text string) string {
	subjectName := "综合"
	if subject != nil {
		subjectName = subject.DisplayName()
	}
	return fmt.Sprintf("请用%s小学生能听懂的方式讲解（%s）：%s", grade.Chinese(), subjectName, text)
}

func quizIntro(subject shared.Subject, grade shared.Grade, qs []question.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "好的！为你准备了%d道%s%s题，一起来挑战吧！💪\n", len(qs), grade.Chinese(), subject.DisplayName())
	for i, q := range qs {
		fmt.Fprintf(&b, "\n%d. %s", i+1, q.Text)
	}
	b.WriteString("\n\n直接发送答案就可以啦～")
	return b.String()
}

func noQuestionsText(subject shared.Subject, grade shared.Grade) string {
	return fmt.Sprintf("哎呀，%s%s的题目暂时没有了～换个题型或者学科试试吧！", grade.Chinese(), subject.DisplayName())
}

func correctFeedback(res question.AnswerResult) string {
	if res.Feedback != "" {
		return res.Feedback
	}
	return lo.Sample(correctTexts)
}

func incorrectFeedback(res question.AnswerResult, q question.Question, position int) string {
	return fmt.Sprintf("%s\n正确答案是：%s\n%s\n\n再来一次：%s",
		res.Feedback, res.CorrectAnswer, lo.Sample(attemptTexts), q.Prompt(position))
}

func completionText(total int) string {
	return fmt.Sprintf("%s\n这组%d道题全部完成啦！", lo.Sample(completeTexts), total)
}
