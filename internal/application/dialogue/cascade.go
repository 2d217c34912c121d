package dialogue

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/xuexi-helper/study-helper/internal/domain/achievement"
	"github.com/xuexi-helper/study-helper/internal/domain/challenge"
	"github.com/xuexi-helper/study-helper/internal/domain/knowledge"
	"github.com/xuexi-helper/study-helper/internal/domain/pet"
	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/domain/tasks"
	"github.com/xuexi-helper/study-helper/internal/domain/team"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEYWORD CASCADE
// Ordered (match, handle) pairs checked before quiz answers. The first match
// wins and the quiz state is left untouched, so "进度" typed mid-quiz shows
// the report instead of being graded as an answer.
// ══════════════════════════════════════════════════════════════════════════════

// keywordCommand is one cascade entry. An empty feature means always on.
type keywordCommand struct {
	name    string
	feature string
	match   func(text string) bool
	handle  func(r *Router, t *turn) ([]string, error)
}

func containsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		return lo.SomeBy(keywords, func(kw string) bool { return strings.Contains(text, kw) })
	}
}

var cascade = []keywordCommand{
	{name: "period_report", match: containsAny("日报", "周报", "月报"), handle: (*Router).showPeriodReport},
	{name: "progress", match: containsAny("进度", "学习报告", "学习情况", "报告"), handle: (*Router).showProgress},
	{name: "achievements", feature: shared.FeatureAchievements, match: isAchievementRequest, handle: (*Router).showAchievements},
	{name: "review", match: containsAny("错题练习", "复习"), handle: (*Router).startReview},
	{name: "wrong_book", match: containsAny("错题"), handle: (*Router).showWrongBook},
	{name: "suggestions", match: containsAny("学习建议", "有什么建议"), handle: (*Router).showSuggestions},
	{name: "daily_tasks", feature: shared.FeatureDailyTasks, match: isTasksRequest, handle: (*Router).handleTasks},
	{name: "knowledge_graph", feature: shared.FeatureKnowledgeGraph, match: containsAny("知识图谱", "知识地图", "掌握情况"), handle: (*Router).showKnowledge},
	{name: "challenges", feature: shared.FeatureChallenges, match: isChallengeRequest, handle: (*Router).handleChallenge},
	{name: "pet", feature: shared.FeaturePet, match: isPetRequest, handle: (*Router).handlePet},
	{name: "team", feature: shared.FeatureTeam, match: containsAny("小队", "团队"), handle: (*Router).handleTeam},
	{name: "help", match: isHelpRequest, handle: (*Router).showHelp},
}

func isAchievementRequest(text string) bool {
	return (strings.Contains(text, "成就") || strings.Contains(text, "勋章")) && !strings.Contains(text, "挑战")
}

func isTasksRequest(text string) bool {
	if strings.Contains(text, "小队") || strings.Contains(text, "团队") {
		return false
	}
	return containsAny("任务", "本周", "设置目标")(text)
}

func isChallengeRequest(text string) bool {
	return strings.Contains(text, "挑战") && !strings.Contains(text, "没挑战")
}

func isPetRequest(text string) bool {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "宠物") || strings.HasPrefix(text, "领养") || strings.HasPrefix(text, "喂食") {
		return true
	}
	// "喂竹子" feeds; a bare "喂" is a hello.
	_, isFood := pet.FindFood(strings.TrimPrefix(text, "喂"))
	return strings.HasPrefix(text, "喂") && isFood
}

func isHelpRequest(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return strings.Contains(lower, "帮助") || lower == "help" || lower == "菜单" || strings.Contains(lower, "你会什么")
}

// matchCommand returns the first enabled cascade entry matching text.
func (r *Router) matchCommand(userID, text string) (keywordCommand, bool) {
	return lo.Find(cascade, func(c keywordCommand) bool {
		if c.feature != "" && !r.features.IsEnabledFor(c.feature, userID) {
			return false
		}
		return c.match(text)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// Progress views
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) loadProgress(t *turn) (*progress.Progress, error) {
	view, err := r.progress.Handle(t.ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return view.Progress, nil
}

func (r *Router) showProgress(t *turn) ([]string, error) {
	view, err := r.progress.Handle(t.ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return []string{view.Report}, nil
}

// reportSpan reads the span out of "日报", "周报" or "月报".
func reportSpan(text string) progress.Span {
	switch {
	case strings.Contains(text, "月报"):
		return progress.SpanMonth
	case strings.Contains(text, "周报"):
		return progress.SpanWeek
	default:
		return progress.SpanDay
	}
}

func (r *Router) showPeriodReport(t *turn) ([]string, error) {
	p, err := r.loadProgress(t)
	if err != nil {
		return nil, err
	}
	return []string{p.PeriodReport(reportSpan(t.text), t.now).Format()}, nil
}

func (r *Router) showSuggestions(t *turn) ([]string, error) {
	view, err := r.progress.Handle(t.ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return []string{progress.FormatSuggestions(view.Suggestions)}, nil
}

func (r *Router) showAchievements(t *turn) ([]string, error) {
	p, err := r.loadProgress(t)
	if err != nil {
		return nil, err
	}
	return []string{achievement.Format(p), achievement.NextGoal(p)}, nil
}

func (r *Router) showWrongBook(t *turn) ([]string, error) {
	view, err := r.progress.Handle(t.ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return []string{progress.FormatWrongBook(view.WrongBook)}, nil
}

func (r *Router) showKnowledge(t *turn) ([]string, error) {
	p, err := r.loadProgress(t)
	if err != nil {
		return nil, err
	}
	return []string{knowledge.Build(p).Format()}, nil
}

func (r *Router) showHelp(*turn) ([]string, error) {
	return []string{helpText}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// Daily tasks
// ══════════════════════════════════════════════════════════════════════════════

var goalPattern = regexp.MustCompile(`设置目标\s*(数学|英语|语文)?\s*(\d+)`)

const goalFormatHint = "设置目标的格式是：\"设置目标 数学 8\"（每天做8道数学题）"

var subjectByName = map[string]shared.Subject{
	"数学": shared.SubjectMath,
	"英语": shared.SubjectEnglish,
	"语文": shared.SubjectChinese,
}

func (r *Router) handleTasks(t *turn) ([]string, error) {
	doc, err := r.tasks.Get(t.ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	switch {
	case strings.Contains(t.text, "本周"):
		return []string{doc.WeeklyStats().Format()}, nil

	case strings.Contains(t.text, "设置目标"):
		m := goalPattern.FindStringSubmatch(t.text)
		if m == nil {
			return []string{goalFormatHint}, nil
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return []string{goalFormatHint}, nil
		}
		subjects := shared.AllSubjects()
		if s, ok := subjectByName[m[1]]; ok {
			subjects = []shared.Subject{s}
		}
		for _, s := range subjects {
			if err := doc.SetGoal(s, n); err != nil {
				return []string{fmt.Sprintf("每天的目标要在1到%d道题之间哦～", tasks.MaxGoal)}, nil
			}
		}
		if err := r.tasks.Save(t.ctx, doc); err != nil {
			return nil, fmt.Errorf("save tasks: %w", err)
		}
		return []string{"✅ 目标设置好啦！", doc.Status(t.now)}, nil
	}

	return []string{doc.Status(t.now)}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// Challenges
// ══════════════════════════════════════════════════════════════════════════════

var (
	startChallengePattern  = regexp.MustCompile(`开始挑战\s*(.*)`)
	finishChallengePattern = regexp.MustCompile(`完成挑战\s*(.*?)\s*(\d+)\s*/\s*(\d+)`)
)

const (
	finishFormatHint      = "完成挑战的格式是：\"完成挑战 闪电计算 8/10\""
	maxChallengeQuestions = 100
)

func (r *Router) handleChallenge(t *turn) ([]string, error) {
	switch {
	case strings.Contains(t.text, "开始挑战"):
		return r.startChallenge(t)
	case strings.Contains(t.text, "完成挑战"):
		return r.finishChallenge(t)
	case strings.Contains(t.text, "挑战成就"):
		rec, err := r.challenges.Get(t.ctx, t.userID)
		if err != nil {
			return nil, fmt.Errorf("load challenges: %w", err)
		}
		return []string{rec.FormatBadges()}, nil
	}
	return []string{challenge.FormatList(t.sess.Grade, t.now)}, nil
}

func (r *Router) startChallenge(t *turn) ([]string, error) {
	m := startChallengePattern.FindStringSubmatch(t.text)
	d, ok := challenge.Find(m[1])
	if !ok {
		return []string{"没有找到这个挑战哦～", challenge.FormatList(t.sess.Grade, t.now)}, nil
	}

	rec, err := r.challenges.Get(t.ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}

	card, err := rec.Begin(d, t.sess.Grade, t.now)
	if err != nil {
		// Begin explains refusals in card.
		return []string{card}, nil
	}
	if err := r.challenges.Save(t.ctx, rec); err != nil {
		return nil, fmt.Errorf("save challenges: %w", err)
	}
	return []string{card}, nil
}

func (r *Router) finishChallenge(t *turn) ([]string, error) {
	m := finishChallengePattern.FindStringSubmatch(t.text)
	if m == nil {
		return []string{finishFormatHint}, nil
	}
	d, ok := challenge.Find(m[1])
	if !ok {
		return []string{"没有找到这个挑战哦～", challenge.FormatList(t.sess.Grade, t.now)}, nil
	}
	correct, errCorrect := strconv.Atoi(m[2])
	total, errTotal := strconv.Atoi(m[3])
	if errCorrect != nil || errTotal != nil || total > maxChallengeQuestions {
		return []string{finishFormatHint}, nil
	}

	rec, err := r.challenges.Get(t.ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}

	today := timeutil.DayKey(t.now)
	started := lo.ContainsBy(rec.Starts, func(s challenge.Start) bool { return s.ChallengeID == d.ID && s.Date == today })
	if !started {
		return []string{fmt.Sprintf("先输入\"开始挑战 %s\"开始挑战吧！", d.Title)}, nil
	}

	score, badges, err := rec.Complete(d, challenge.Result{Correct: correct, Total: total}, t.now)
	if err != nil {
		return []string{"答对数不能超过总数哦，再检查一下吧～"}, nil
	}
	if err := r.challenges.Save(t.ctx, rec); err != nil {
		return nil, fmt.Errorf("save challenges: %w", err)
	}
	return []string{challenge.FormatScore(d, score, rec.PerfectStreak, badges)}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// Learning pet
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) handlePet(t *turn) ([]string, error) {
	text := strings.TrimSpace(t.text)

	if strings.HasPrefix(text, "领养") {
		p, err := pet.Adopt(t.userID, strings.TrimPrefix(text, "领养"), t.now)
		if err != nil {
			return []string{"没有找到这个宠物哦～", pet.FormatSelection()}, nil
		}
		if err := r.pets.Save(t.ctx, p); err != nil {
			return nil, fmt.Errorf("save pet: %w", err)
		}
		return []string{fmt.Sprintf("🎉 领养成功！%s %s成为你的学习伙伴啦！", p.Emoji, p.Name), p.Status(t.now)}, nil
	}

	p, err := r.pets.Get(t.ctx, t.userID)
	if shared.IsNotFound(err) {
		return []string{"你还没有学习伙伴呢！", pet.FormatSelection()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pet: %w", err)
	}

	if strings.HasPrefix(text, "喂") {
		food, ok := pet.FindFood(strings.TrimPrefix(strings.TrimPrefix(text, "喂食"), "喂"))
		if !ok {
			return []string{"可以喂的食物有：" + strings.Join(pet.FoodNames(), "、")}, nil
		}
		msg, err := p.Feed(food, t.now)
		if err != nil {
			// Feed explains refusals in msg.
			return []string{msg}, nil
		}
		if err := r.pets.Save(t.ctx, p); err != nil {
			return nil, fmt.Errorf("save pet: %w", err)
		}
		return []string{msg}, nil
	}

	if strings.Contains(text, "加油") || strings.Contains(text, "鼓励") {
		return []string{p.Encourage()}, nil
	}
	return []string{p.Status(t.now)}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// Teams
// ══════════════════════════════════════════════════════════════════════════════

var (
	createTeamPattern = regexp.MustCompile(`创建(?:小队|团队)\s*(.*)`)
	joinTeamPattern   = regexp.MustCompile(`加入(?:小队|团队)\s*([A-Za-z0-9]*)`)
)

func (r *Router) handleTeam(t *turn) ([]string, error) {
	switch {
	case strings.Contains(t.text, "创建"):
		return r.createTeam(t)
	case strings.Contains(t.text, "加入"):
		return r.joinTeam(t)
	case strings.Contains(t.text, "退出"):
		return r.leaveTeam(t)
	}

	tm, err := r.currentTeam(t)
	if err != nil {
		return nil, err
	}
	if tm == nil {
		return []string{team.FormatNoTeam()}, nil
	}

	switch {
	case strings.Contains(t.text, "排行"):
		return []string{tm.FormatLeaderboard()}, nil
	case strings.Contains(t.text, "任务"):
		return []string{tm.FormatTasks(t.now)}, nil
	}
	return []string{tm.FormatInfo(t.now)}, nil
}

// currentTeam returns the user's team or nil when the user has none.
func (r *Router) currentTeam(t *turn) (*team.Team, error) {
	m, err := r.teams.Membership(t.ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if !m.InTeam() {
		return nil, nil
	}
	tm, err := r.teams.Team(t.ctx, m.TeamCode)
	if errors.Is(err, shared.ErrTeamNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}
	return tm, nil
}

func (r *Router) createTeam(t *turn) ([]string, error) {
	current, err := r.currentTeam(t)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return []string{fmt.Sprintf("你已经在小队「%s」里啦！邀请码：%s", current.Name, current.Code)}, nil
	}

	name := ""
	if m := createTeamPattern.FindStringSubmatch(t.text); m != nil {
		name = m[1]
	}
	tm := team.Create(r.newID(), t.userID, name, team.DetectKind(name), t.now)

	if err := r.teams.SaveTeam(t.ctx, tm); err != nil {
		return nil, fmt.Errorf("save team: %w", err)
	}
	membership := &team.Membership{UserID: t.userID, TeamCode: tm.Code, Role: team.RoleLeader, JoinedAt: t.now}
	if err := r.teams.SaveMembership(t.ctx, membership); err != nil {
		return nil, fmt.Errorf("save membership: %w", err)
	}

	r.logger.Info("team created", "user_id", t.userID, "team_code", tm.Code)
	return []string{tm.FormatCreated()}, nil
}

func (r *Router) joinTeam(t *turn) ([]string, error) {
	m := joinTeamPattern.FindStringSubmatch(t.text)
	if m == nil || m[1] == "" {
		return []string{"加入小队的格式是：\"加入小队 邀请码\""}, nil
	}
	code := team.NormalizeCode(m[1])

	current, err := r.currentTeam(t)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return []string{fmt.Sprintf("你已经在小队「%s」里啦！先输入\"退出小队\"才能加入别的小队。", current.Name)}, nil
	}

	tm, err := r.teams.Team(t.ctx, code)
	if errors.Is(err, shared.ErrTeamNotFound) {
		return []string{fmt.Sprintf("没有找到邀请码为 %s 的小队，检查一下邀请码吧～", code)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}

	if err := tm.Join(t.userID, t.now); err != nil {
		if errors.Is(err, shared.ErrTeamFull) {
			return []string{"这个小队已经满员啦，换一个小队试试吧！"}, nil
		}
		if !errors.Is(err, shared.ErrAlreadyInTeam) {
			return nil, fmt.Errorf("join team: %w", err)
		}
	}

	if err := r.teams.SaveTeam(t.ctx, tm); err != nil {
		return nil, fmt.Errorf("save team: %w", err)
	}
	membership := &team.Membership{UserID: t.userID, TeamCode: tm.Code, Role: team.RoleMember, JoinedAt: t.now}
	if err := r.teams.SaveMembership(t.ctx, membership); err != nil {
		return nil, fmt.Errorf("save membership: %w", err)
	}
	return []string{tm.FormatJoined()}, nil
}

func (r *Router) leaveTeam(t *turn) ([]string, error) {
	tm, err := r.currentTeam(t)
	if err != nil {
		return nil, err
	}
	if tm == nil {
		return []string{team.FormatNoTeam()}, nil
	}
	if t.userID == tm.LeaderID {
		return []string{"队长不能退出小队哦～"}, nil
	}
	// A member missing from the roster only needs the pointer removed.
	if err := tm.Leave(t.userID); err == nil {
		if err := r.teams.SaveTeam(t.ctx, tm); err != nil {
			return nil, fmt.Errorf("save team: %w", err)
		}
	}
	if err := r.teams.DeleteMembership(t.ctx, t.userID); err != nil {
		return nil, fmt.Errorf("delete membership: %w", err)
	}
	return []string{fmt.Sprintf("已退出小队「%s」，随时欢迎回来！", tm.Name)}, nil
}

func defaultNewID() string { return uuid.NewString() }
