package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/application/command"
	"github.com/xuexi-helper/study-helper/internal/application/eventhandler"
	"github.com/xuexi-helper/study-helper/internal/application/query"
	"github.com/xuexi-helper/study-helper/internal/domain/intent"
	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/session"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/bank"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/messaging"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/document"
)

// stubProvider serves a fixed list and grades by exact match.
type stubProvider struct {
	qs    []question.Question
	err   error
	calls int
	opts  []question.Options
}

func (p *stubProvider) GetQuestions(_ context.Context, _ shared.Subject, opts question.Options) ([]question.Question, error) {
	p.calls++
	p.opts = append(p.opts, opts)
	if p.err != nil {
		return nil, p.err
	}
	n := min(opts.Count, len(p.qs))
	return append([]question.Question(nil), p.qs[:n]...), nil
}

func (p *stubProvider) CheckAnswer(_ context.Context, q question.Question, input string) (question.AnswerResult, error) {
	correct := strings.TrimSpace(input) == q.Answer
	res := question.AnswerResult{Correct: correct, CorrectAnswer: q.Answer}
	if !correct {
		res.Feedback = "再想一想～"
	}
	return res, nil
}

func twoQuestions() []question.Question {
	return []question.Question{
		{ID: "a", Text: "2+3=?", Answer: "5", Type: shared.TopicAddition, Subject: shared.SubjectMath, Grade: 2},
		{ID: "b", Text: "9-4=?", Answer: "5", Type: shared.TopicSubtraction, Subject: shared.SubjectMath, Grade: 2},
	}
}

func threeQuestions() []question.Question {
	return append(twoQuestions(),
		question.Question{ID: "c", Text: "6+1=?", Answer: "7", Type: shared.TopicAddition, Subject: shared.SubjectMath, Grade: 2})
}

type fixture struct {
	router   *Router
	sessions *session.Store
	repos    *document.Repositories
	bus      *messaging.InMemoryEventBus
	now      time.Time
}

type denyGate map[string]bool

func (g denyGate) IsEnabledFor(feature, _ string) bool { return !g[feature] }

func newFixture(t *testing.T, provider question.Provider, gate shared.FeatureGate) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC)} // 10:00 in Shanghai, a Monday
	clock := func() time.Time { return f.now }

	cfg := session.DefaultStoreConfig()
	cfg.Clock = clock
	f.sessions = session.NewStore(cfg)
	f.repos = document.NewRepositories(document.NewMemoryStore(), clock, nil)

	f.bus = messaging.NewInMemoryEventBus(messaging.DefaultInMemoryEventBusConfig())
	t.Cleanup(func() { _ = f.bus.Close() })
	onAnswer := eventhandler.NewOnAnswerRecordedHandler(f.repos.Tasks, f.repos.Pet, f.repos.Team, gate, clock, nil)
	require.NoError(t, f.bus.Subscribe(shared.EventAnswerRecorded, onAnswer.Handle))

	router, err := NewRouter(Dependencies{
		Sessions:   f.sessions,
		Questions:  provider,
		Recorder:   command.NewRecordAnswerHandler(f.repos.Progress, f.bus, clock, nil),
		Progress:   query.NewGetProgressHandler(f.repos.Progress, clock),
		Tasks:      f.repos.Tasks,
		Pets:       f.repos.Pet,
		Challenges: f.repos.Challenge,
		Teams:      f.repos.Team,
		Publisher:  f.bus,
		Features:   gate,
		Clock:      clock,
	})
	require.NoError(t, err)
	f.router = router
	return f
}

func (f *fixture) say(t *testing.T, userID, text string) []Message {
	t.Helper()
	msgs, err := f.router.Handle(context.Background(), Turn{Text: text, UserID: userID})
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	return msgs
}

func contents(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

func TestNewRouter_RequiresCollaborators(t *testing.T) {
	_, err := NewRouter(Dependencies{})
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestRouter_ScenarioA_StartQuiz(t *testing.T) {
	f := newFixture(t, bank.New(), nil)

	msgs := f.say(t, "u1", "二年级数学题")
	require.Len(t, msgs, 2)
	assert.Equal(t, shared.RoleAssistant, msgs[0].Role)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "第1题："))

	sess := f.sessions.Get("u1")
	assert.True(t, sess.State.InQuestionSession)
	assert.Equal(t, 0, sess.State.CurrentQuestionIndex)
	assert.NotEmpty(t, sess.State.Questions)
	assert.LessOrEqual(t, len(sess.State.Questions), 5)
	assert.Equal(t, shared.Grade(2), sess.Grade)
	require.NotNil(t, sess.Subject)
	assert.Equal(t, shared.SubjectMath, *sess.Subject)
	for _, q := range sess.State.Questions {
		assert.Equal(t, shared.Grade(2), q.Grade)
		assert.Equal(t, shared.SubjectMath, q.Subject)
	}
}

func TestRouter_ScenarioB_CorrectAnswerAdvances(t *testing.T) {
	f := newFixture(t, bank.New(), nil)
	f.say(t, "u1", "二年级数学题")
	first := f.sessions.Get("u1").State.Questions[0]

	require.Len(t, f.sessions.Get("u1").State.Questions, intent.DefaultQuestionCount)

	msgs := f.say(t, "u1", first.Answer)
	sess := f.sessions.Get("u1")
	require.True(t, sess.InQuiz())
	assert.Equal(t, 1, sess.State.CurrentQuestionIndex)
	assert.True(t, strings.HasPrefix(msgs[len(msgs)-1].Content, "第2题："))

	p, err := f.repos.Progress.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalQuestions)
	assert.Equal(t, 1, p.CorrectAnswers)

	tk, err := f.repos.Tasks.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, tk.DailyProgress[shared.SubjectMath], "answer event reaches daily tasks")
}

func TestRouter_ScenarioC_WrongAnswerStays(t *testing.T) {
	f := newFixture(t, bank.New(), nil)
	f.say(t, "u1", "二年级数学题")
	first := f.sessions.Get("u1").State.Questions[0]

	msgs := f.say(t, "u1", "不知道")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, first.Answer)
	assert.Contains(t, msgs[0].Content, first.Prompt(1))

	sess := f.sessions.Get("u1")
	assert.True(t, sess.InQuiz())
	assert.Equal(t, 0, sess.State.CurrentQuestionIndex)

	p, err := f.repos.Progress.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalQuestions)
	assert.Equal(t, 0, p.CorrectAnswers)
	require.Len(t, p.WrongQuestions, 1)
	assert.Equal(t, first.Text, p.WrongQuestions[0].Question)
}

func TestRouter_ScenarioD_GreetingKeepsQuiz(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)
	f.say(t, "u1", "出2道数学题")
	before := f.sessions.Get("u1").State

	msgs := f.say(t, "u1", "你好")
	require.Len(t, msgs, 1)
	assert.True(t, lookLikeWelcome(msgs[0].Content), msgs[0].Content)
	assert.Equal(t, before, f.sessions.Get("u1").State)
}

func lookLikeWelcome(text string) bool {
	for _, texts := range welcomeTexts {
		for _, w := range texts {
			if strings.HasPrefix(text, w) {
				return true
			}
		}
	}
	return false
}

func TestRouter_ScenarioE_EvictedSessionStartsFresh(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)
	f.say(t, "u1", "四年级数学题")
	require.True(t, f.sessions.Get("u1").InQuiz())

	f.now = f.now.Add(25 * time.Hour)
	assert.Equal(t, 1, f.sessions.EvictIdle(session.DefaultIdleTTL))

	sess := f.sessions.Get("u1")
	assert.Equal(t, shared.DefaultGrade, sess.Grade)
	assert.False(t, sess.InQuiz())
	assert.Empty(t, sess.History)
}

func TestRouter_ProgressMidQuizIsIdempotent(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)
	f.say(t, "u1", "出2道数学题")
	f.say(t, "u1", "5")
	before := f.sessions.Get("u1").State
	require.Equal(t, 1, before.CurrentQuestionIndex)

	msgs := f.say(t, "u1", "进度")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "📊 学习报告")
	assert.Equal(t, before, f.sessions.Get("u1").State)

	p, err := f.repos.Progress.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalQuestions, "the keyword is not graded")
}

func TestRouter_CompletionResetsQuiz(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)
	f.say(t, "u1", "出2道数学题")

	msgs := f.say(t, "u1", "5")
	assert.Equal(t, "第2题：9-4=?", msgs[len(msgs)-1].Content)
	// First correct answer unlocks badges.
	assert.Contains(t, contents(msgs), "初露锋芒")

	msgs = f.say(t, "u1", "5")
	assert.Contains(t, contents(msgs), "这组2道题全部完成啦")
	assert.Contains(t, msgs[len(msgs)-1].Content, "十题达人")

	sess := f.sessions.Get("u1")
	assert.False(t, sess.State.InQuestionSession)
	assert.Equal(t, 0, sess.State.CurrentQuestionIndex)
	assert.Empty(t, sess.State.Questions)
}

func TestRouter_ProviderFailureLeavesSessionUntouched(t *testing.T) {
	provider := &stubProvider{err: errors.New("bank offline")}
	f := newFixture(t, provider, nil)

	msgs, err := f.router.Handle(context.Background(), Turn{Text: "出5道数学题", UserID: "u1"})
	require.Error(t, err)
	assert.Nil(t, msgs)

	sess := f.sessions.Get("u1")
	assert.False(t, sess.InQuiz())
	assert.Empty(t, sess.History)
	assert.Nil(t, sess.Subject)
}

func TestRouter_ZeroQuestionsStaysIdle(t *testing.T) {
	f := newFixture(t, &stubProvider{}, nil)

	msgs := f.say(t, "u1", "出5道数学题")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "暂时没有")
	assert.False(t, f.sessions.Get("u1").InQuiz())
}

func TestRouter_UnsupportedGrade(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)

	msgs := f.say(t, "u1", "六年级数学题")
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Contains(t, msgs[0].Content, "二到五年级")
	assert.Equal(t, shared.DefaultGrade, f.sessions.Get("u1").Grade)
	assert.True(t, f.sessions.Get("u1").InQuiz())
}

func TestRouter_ForwardsOpenEndedRequests(t *testing.T) {
	f := newFixture(t, &stubProvider{}, nil)

	msgs := f.say(t, "u1", "为什么分数要通分")
	require.Len(t, msgs, 1)
	assert.Equal(t, shared.RoleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "三年级")
	assert.Contains(t, msgs[0].Content, "为什么分数要通分")

	msgs = f.say(t, "u1", "今天天气不错")
	require.Len(t, msgs, 1)
	assert.Equal(t, Message{Role: shared.RoleUser, Content: "今天天气不错"}, msgs[0])

	// Forwarded text is not an assistant reply.
	for _, h := range f.sessions.Get("u1").History {
		assert.Equal(t, shared.RoleUser, h.Role)
	}
}

func TestRouter_ChangeSubjectKeepsQuiz(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)
	f.say(t, "u1", "出2道数学题")
	before := f.sessions.Get("u1").State

	msgs := f.say(t, "u1", "我想换一科")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "哪一科")
	assert.Equal(t, before, f.sessions.Get("u1").State)
}

func TestRouter_HistoryIsBounded(t *testing.T) {
	f := newFixture(t, &stubProvider{}, nil)
	for i := 0; i < 15; i++ {
		f.say(t, "u1", fmt.Sprintf("帮助 %d", i))
	}
	assert.Len(t, f.sessions.Get("u1").History, session.DefaultMaxHistory)
}

func TestRouter_DisabledFeatureFallsThrough(t *testing.T) {
	f := newFixture(t, &stubProvider{}, denyGate{shared.FeaturePet: true})

	msgs := f.say(t, "u1", "宠物")
	require.Len(t, msgs, 1)
	assert.Equal(t, shared.RoleUser, msgs[0].Role)
}

func TestRouter_Pet(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)

	assert.Contains(t, contents(f.say(t, "u1", "宠物")), "选择你的学习伙伴")
	assert.Contains(t, contents(f.say(t, "u1", "领养熊猫")), "领养成功")
	assert.Contains(t, contents(f.say(t, "u1", "喂食竹子")), "竹子")

	f.say(t, "u1", "出1道数学题")
	f.say(t, "u1", "5")

	p, err := f.repos.Pet.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalStudyDays, "answers feed the pet's study streak")
}

func TestRouter_Teams(t *testing.T) {
	f := newFixture(t, &stubProvider{}, nil)
	ctx := context.Background()

	assert.Contains(t, contents(f.say(t, "leader", "小队")), "还没有加入小队")
	f.say(t, "leader", "创建小队 学霸队")

	m, err := f.repos.Team.Membership(ctx, "leader")
	require.NoError(t, err)
	require.True(t, m.InTeam())

	f.say(t, "member", "加入小队 "+strings.ToLower(m.TeamCode))
	tm, err := f.repos.Team.Team(ctx, m.TeamCode)
	require.NoError(t, err)
	assert.True(t, tm.Has("member"))

	assert.Contains(t, contents(f.say(t, "leader", "退出小队")), "队长不能退出")
	assert.Contains(t, contents(f.say(t, "member", "退出小队")), "已退出小队")

	tm, err = f.repos.Team.Team(ctx, m.TeamCode)
	require.NoError(t, err)
	assert.False(t, tm.Has("member"))

	assert.Contains(t, contents(f.say(t, "member", "加入小队 ZZZZZZ")), "没有找到")
}

func TestRouter_Challenges(t *testing.T) {
	f := newFixture(t, &stubProvider{}, nil)

	assert.Contains(t, contents(f.say(t, "u1", "完成挑战 闪电计算 8/10")), "开始挑战 闪电计算")
	assert.Contains(t, contents(f.say(t, "u1", "开始挑战 闪电计算")), "挑战开始")
	assert.Contains(t, contents(f.say(t, "u1", "开始挑战 闪电计算")), "今天已经开始过")
	assert.Contains(t, contents(f.say(t, "u1", "完成挑战 闪电计算 8/10")), "总分：96")
	assert.Contains(t, contents(f.say(t, "u1", "挑战成就")), "首次挑战")
}

func TestRouter_TasksAndViews(t *testing.T) {
	f := newFixture(t, &stubProvider{}, nil)

	assert.Contains(t, contents(f.say(t, "u1", "今日任务")), "📋 今日任务")
	assert.Contains(t, contents(f.say(t, "u1", "设置目标 数学 8")), "0/8")
	assert.Contains(t, contents(f.say(t, "u1", "本周统计")), "📅 本周学习")
	assert.Contains(t, contents(f.say(t, "u1", "错题本")), "错题本是空的")
	assert.Contains(t, contents(f.say(t, "u1", "我的成就")), "还没有获得任何成就")
	assert.Contains(t, contents(f.say(t, "u1", "知识图谱")), "知识掌握图谱")
	assert.Contains(t, contents(f.say(t, "u1", "帮助")), "我可以帮你做的事情")
}

func TestRouter_ConsecutiveCorrectAnswersMoveCursor(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: threeQuestions()}, nil)
	f.say(t, "u1", "出3道数学题")
	require.Len(t, f.sessions.Get("u1").State.Questions, 3)

	msgs := f.say(t, "u1", "5")
	sess := f.sessions.Get("u1")
	require.True(t, sess.InQuiz())
	assert.Equal(t, 1, sess.State.CurrentQuestionIndex)
	assert.Equal(t, "第2题：9-4=?", msgs[len(msgs)-1].Content)

	msgs = f.say(t, "u1", "5")
	sess = f.sessions.Get("u1")
	require.True(t, sess.InQuiz())
	assert.Equal(t, 2, sess.State.CurrentQuestionIndex)
	assert.Equal(t, "第3题：6+1=?", msgs[len(msgs)-1].Content)

	p, err := f.repos.Progress.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalQuestions)
	assert.Equal(t, 2, p.CorrectAnswers)

	f.say(t, "u1", "7")
	assert.False(t, f.sessions.Get("u1").InQuiz())
}

func TestRouter_BlankInputGetsPrompt(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		msgs := f.say(t, "u1", text)
		require.Len(t, msgs, 1)
		assert.Equal(t, shared.RoleAssistant, msgs[0].Role)
		assert.Contains(t, msgs[0].Content, "说点什么吧")
	}

	f.say(t, "u1", "出2道数学题")
	before := f.sessions.Get("u1").State

	msgs := f.say(t, "u1", " ")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "第1题：2+3=?")
	assert.Equal(t, before, f.sessions.Get("u1").State)

	p, err := f.repos.Progress.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, p.TotalQuestions, "blank input is never graded")
}

func TestRouter_ConceptQuestionMidQuizIsForwarded(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)
	f.say(t, "u1", "出2道数学题")
	before := f.sessions.Get("u1").State

	for _, text := range []string{"什么是减法", "给我讲讲加法"} {
		msgs := f.say(t, "u1", text)
		require.Len(t, msgs, 1, text)
		assert.Equal(t, shared.RoleUser, msgs[0].Role)
		assert.Contains(t, msgs[0].Content, text)
	}
	assert.Equal(t, before, f.sessions.Get("u1").State)

	p, err := f.repos.Progress.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, p.TotalQuestions)
	assert.Empty(t, p.WrongQuestions)

	// The quiz picks up where it was.
	msgs := f.say(t, "u1", "5")
	assert.Equal(t, "第2题：9-4=?", msgs[len(msgs)-1].Content)
}

func TestRouter_KeywordsLeaveGradeAlone(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)
	f.say(t, "u1", "出2道数学题")
	require.Equal(t, shared.DefaultGrade, f.sessions.Get("u1").Grade)
	before := f.sessions.Get("u1").State

	msgs := f.say(t, "u1", "五年级进度")
	assert.Contains(t, contents(msgs), "📊 学习报告")
	sess := f.sessions.Get("u1")
	assert.Equal(t, shared.DefaultGrade, sess.Grade)
	assert.Equal(t, before, sess.State)

	// A quiz answer that happens to name a grade is graded, not applied.
	f.say(t, "u1", "五年级")
	assert.Equal(t, shared.DefaultGrade, f.sessions.Get("u1").Grade)

	f.say(t, "u1", "我想学英语")
	sess = f.sessions.Get("u1")
	require.NotNil(t, sess.Subject)
	assert.Equal(t, shared.SubjectEnglish, *sess.Subject)
}

func TestRouter_NumericInputsAreChecked(t *testing.T) {
	f := newFixture(t, &stubProvider{}, nil)
	ctx := context.Background()

	assert.Contains(t, contents(f.say(t, "u1", "设置目标 数学 99999999999999999999")), "设置目标的格式是")
	assert.Contains(t, contents(f.say(t, "u1", "设置目标 数学 500")), "1到100")
	tk, err := f.repos.Tasks.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, tk.DailyGoal[shared.SubjectMath])

	f.say(t, "u1", "开始挑战 闪电计算")
	assert.Contains(t, contents(f.say(t, "u1", "完成挑战 闪电计算 99999999999999999999/99999999999999999999")), "完成挑战的格式是")
	assert.Contains(t, contents(f.say(t, "u1", "完成挑战 闪电计算 8/1000")), "完成挑战的格式是")

	rec, err := f.repos.Challenge.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, rec.TotalCompleted)
}

func TestRouter_AdaptiveDifficulty(t *testing.T) {
	provider := &stubProvider{qs: twoQuestions()}
	f := newFixture(t, provider, nil)

	f.say(t, "u1", "出2道数学题")
	require.Len(t, provider.opts, 1)
	assert.Empty(t, provider.opts[0].Difficulty, "no history, no preference")

	p := progress.New("u2", f.now)
	for i := 0; i < 10; i++ {
		p.Record(shared.SubjectMath, shared.TopicAddition, i < 9, question.Question{Text: "1+1=?", Answer: "2"}, f.now)
	}
	require.NoError(t, f.repos.Progress.Save(context.Background(), p))

	f.say(t, "u2", "出2道数学题")
	require.Len(t, provider.opts, 2)
	assert.Equal(t, shared.DifficultyHard, provider.opts[1].Difficulty)
}

func TestRouter_WrongBookReview(t *testing.T) {
	provider := &stubProvider{qs: twoQuestions()}
	f := newFixture(t, provider, nil)

	assert.Contains(t, contents(f.say(t, "u1", "错题练习")), "错题本是空的")
	assert.False(t, f.sessions.Get("u1").InQuiz())

	f.say(t, "u1", "出2道数学题")
	f.say(t, "u1", "4")
	assert.Contains(t, contents(f.say(t, "u1", "复习一下")), "先把这组题做完")
	f.say(t, "u1", "5")
	f.say(t, "u1", "5")
	require.False(t, f.sessions.Get("u1").InQuiz())

	provider.opts = nil
	msgs := f.say(t, "u1", "错题练习")
	assert.Equal(t, "📚 根据你的错题记录，重点练习这些知识点：加法", msgs[0].Content)
	assert.True(t, strings.HasPrefix(msgs[len(msgs)-1].Content, "第1题："))

	sess := f.sessions.Get("u1")
	require.True(t, sess.InQuiz())
	require.NotNil(t, sess.Subject)
	assert.Equal(t, shared.SubjectMath, *sess.Subject)

	require.NotEmpty(t, provider.opts)
	require.NotNil(t, provider.opts[0].Topic)
	assert.Equal(t, shared.TopicAddition, *provider.opts[0].Topic)
	assert.Equal(t, shared.DifficultyEasy, provider.opts[0].Difficulty)
}

func TestRouter_PeriodReportsAndSuggestions(t *testing.T) {
	f := newFixture(t, &stubProvider{qs: twoQuestions()}, nil)
	f.say(t, "u1", "出2道数学题")
	f.say(t, "u1", "5")

	day := contents(f.say(t, "u1", "日报"))
	assert.Contains(t, day, "今日学习报告")
	assert.Contains(t, day, "总题数：1题")
	assert.Contains(t, contents(f.say(t, "u1", "看看周报")), "周学习报告")
	assert.Contains(t, contents(f.say(t, "u1", "本月报告")), "月学习报告")
	assert.Contains(t, contents(f.say(t, "u1", "学习建议")), "💡 学习建议")

	assert.Equal(t, 1, f.sessions.Get("u1").State.CurrentQuestionIndex, "reports leave the quiz alone")
}
