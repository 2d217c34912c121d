// Package dialogue turns one utterance into an ordered list of replies while
// advancing the per-user conversation state.
//
// A turn runs inside session.Store.Transact: the router works on a copy of
// the session and the copy is swapped in only when the whole turn succeeded,
// so a failed question fetch never leaves a half-started quiz behind.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuexi-helper/study-helper/internal/application/command"
	"github.com/xuexi-helper/study-helper/internal/application/query"
	"github.com/xuexi-helper/study-helper/internal/domain/challenge"
	"github.com/xuexi-helper/study-helper/internal/domain/intent"
	"github.com/xuexi-helper/study-helper/internal/domain/pet"
	"github.com/xuexi-helper/study-helper/internal/domain/question"
	"github.com/xuexi-helper/study-helper/internal/domain/session"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/domain/tasks"
	"github.com/xuexi-helper/study-helper/internal/domain/team"
	"github.com/xuexi-helper/study-helper/pkg/timeutil"
)

// Turn is one incoming utterance.
type Turn struct {
	Text   string `json:"text"`
	UserID string `json:"userId,omitempty"`
}

// Message is one outgoing message. Assistant messages are final replies;
// user messages are requests forwarded to an external generator.
type Message struct {
	Role    shared.Role `json:"role"`
	Content string      `json:"content"`
}

func assistant(content string) Message {
	return Message{Role: shared.RoleAssistant, Content: content}
}

// AnswerRecorder writes one graded answer to the progress ledger.
type AnswerRecorder interface {
	Handle(ctx context.Context, cmd command.RecordAnswerCommand) (*command.RecordAnswerResult, error)
}

// ProgressReader reads the progress ledger.
type ProgressReader interface {
	Handle(ctx context.Context, userID string) (*query.ProgressView, error)
}

// Dependencies are the collaborators of a Router. Sessions, Questions,
// Recorder and Progress are required.
type Dependencies struct {
	Sessions  *session.Store
	Questions question.Provider
	Recorder  AnswerRecorder
	Progress  ProgressReader

	Tasks      tasks.Repository
	Pets       pet.Repository
	Challenges challenge.Repository
	Teams      team.Repository

	Publisher shared.EventPublisher
	Features  shared.FeatureGate
	Clock     func() time.Time
	NewID     func() string
	Logger    *slog.Logger
}

// ErrMissingDependency is returned by NewRouter.
var ErrMissingDependency = errors.New("dialogue: missing dependency")

// Router is the dialogue state machine.
type Router struct {
	sessions   *session.Store
	questions  question.Provider
	recorder   AnswerRecorder
	progress   ProgressReader
	tasks      tasks.Repository
	pets       pet.Repository
	challenges challenge.Repository
	teams      team.Repository
	publisher  shared.EventPublisher
	features   shared.FeatureGate
	clock      func() time.Time
	newID      func() string
	logger     *slog.Logger
}

// NewRouter creates a Router. Gamification repositories may be nil only when
// the matching feature is switched off.
func NewRouter(deps Dependencies) (*Router, error) {
	switch {
	case deps.Sessions == nil:
		return nil, fmt.Errorf("%w: session store", ErrMissingDependency)
	case deps.Questions == nil:
		return nil, fmt.Errorf("%w: question provider", ErrMissingDependency)
	case deps.Recorder == nil:
		return nil, fmt.Errorf("%w: answer recorder", ErrMissingDependency)
	case deps.Progress == nil:
		return nil, fmt.Errorf("%w: progress reader", ErrMissingDependency)
	}

	if deps.Publisher == nil {
		deps.Publisher = shared.NopPublisher{}
	}
	if deps.Features == nil {
		deps.Features = shared.AllFeatures{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = defaultNewID
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Router{
		sessions:   deps.Sessions,
		questions:  deps.Questions,
		recorder:   deps.Recorder,
		progress:   deps.Progress,
		tasks:      deps.Tasks,
		pets:       deps.Pets,
		challenges: deps.Challenges,
		teams:      deps.Teams,
		publisher:  deps.Publisher,
		features:   gatedByRepos(deps),
		clock:      deps.Clock,
		newID:      deps.NewID,
		logger:     deps.Logger.With("component", "dialogue"),
	}, nil
}

// repoGate switches off features whose repository is missing.
type repoGate struct {
	inner    shared.FeatureGate
	disabled map[string]bool
}

func (g repoGate) IsEnabledFor(feature, userID string) bool {
	return !g.disabled[feature] && g.inner.IsEnabledFor(feature, userID)
}

func gatedByRepos(deps Dependencies) shared.FeatureGate {
	return repoGate{
		inner: deps.Features,
		disabled: map[string]bool{
			shared.FeatureDailyTasks: deps.Tasks == nil,
			shared.FeatureChallenges: deps.Challenges == nil,
			shared.FeaturePet:        deps.Pets == nil,
			shared.FeatureTeam:       deps.Teams == nil,
		},
	}
}

// turn is the working state of one Handle call.
type turn struct {
	ctx    context.Context
	userID string
	text   string
	cls    intent.Classification
	sess   *session.Session
	now    time.Time
}

// Handle processes one turn and returns the replies in order. On error the
// session is left exactly as it was before the turn.
func (r *Router) Handle(ctx context.Context, in Turn) ([]Message, error) {
	userID := in.UserID
	if userID == "" {
		userID = session.DefaultUserID
	}

	var out []Message
	_, err := r.sessions.Transact(userID, func(sess session.Session) (session.Session, error) {
		t := &turn{
			ctx:    ctx,
			userID: userID,
			text:   strings.TrimSpace(in.Text),
			cls:    intent.Classify(in.Text),
			sess:   &sess,
			now:    r.clock(),
		}

		msgs, err := r.route(t)
		if err != nil {
			return sess, err
		}
		for _, m := range msgs {
			if m.Role == shared.RoleAssistant {
				r.sessions.Append(t.sess, shared.RoleAssistant, m.Content)
			}
		}
		out = msgs
		return sess, nil
	})
	if err != nil {
		r.logger.Error("turn failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("dialogue turn: %w", err)
	}
	return out, nil
}

func (r *Router) route(t *turn) ([]Message, error) {
	if t.text == "" {
		return []Message{assistant(blankInputPrompt(t.sess))}, nil
	}

	firstTurn := len(t.sess.History) == 0
	r.sessions.Append(t.sess, shared.RoleUser, t.text)

	replies, forward, err := r.dispatch(t, firstTurn)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(replies)+1)
	for _, reply := range replies {
		out = append(out, assistant(reply))
	}
	if forward != "" {
		out = append(out, Message{Role: shared.RoleUser, Content: forward})
	}

	r.logger.Debug("turn handled",
		"user_id", t.userID,
		"intent", t.cls.Intent,
		"in_quiz", t.sess.InQuiz(),
		"messages", len(out),
	)
	return out, nil
}

// dispatch picks the branch for the turn. It returns assistant replies and,
// for open-ended requests, the text to forward to the external generator.
//
// Keyword commands, greetings and quiz answers leave grade, subject and topic
// alone; only the branches that act on them apply what the classifier found.
func (r *Router) dispatch(t *turn, firstTurn bool) ([]string, string, error) {
	if cmd, ok := r.matchCommand(t.userID, t.text); ok {
		r.logger.Debug("keyword command", "user_id", t.userID, "command", cmd.name)
		replies, err := cmd.handle(r, t)
		return replies, "", err
	}

	switch {
	case t.cls.Intent == intent.IntentGreeting:
		return []string{welcome(timeutil.PeriodOfDay(t.now), firstTurn)}, "", nil

	case t.cls.Intent == intent.IntentChangeSubject:
		// An active quiz survives a subject switch.
		notes := r.applyExtracted(t)
		return append(notes, subjectSwitchPrompt(t.cls.Subject)), "", nil

	case t.cls.Intent == intent.IntentAnswerQuestion, t.cls.Intent == intent.IntentExplainConcept:
		// A question about a concept mid-quiz is not an answer attempt.
		notes := r.applyExtracted(t)
		return notes, explanationRequest(t.sess.Grade, t.sess.Subject, t.text), nil

	case t.sess.InQuiz():
		replies, err := r.answerQuiz(t)
		return replies, "", err

	case t.cls.Intent == intent.IntentGenerateQuestions:
		notes := r.applyExtracted(t)
		replies, err := r.startQuiz(t)
		return append(notes, replies...), "", err
	}

	return r.applyExtracted(t), t.text, nil
}

// applyExtracted copies the classified grade, subject and topic into the
// session. It returns the unsupported-grade note when one is due.
func (r *Router) applyExtracted(t *turn) []string {
	var notes []string
	if t.cls.Grade != nil {
		t.sess.Grade = *t.cls.Grade
	}
	if t.cls.UnsupportedGrade {
		notes = append(notes, unsupportedGradeNote(t.sess.Grade))
	}
	if t.cls.Subject != nil {
		subject := *t.cls.Subject
		t.sess.Subject = &subject
	}
	if t.cls.Topic != nil {
		topic := *t.cls.Topic
		t.sess.Topic = &topic
	}
	return notes
}

// Sessions exposes the session store for read-only views and resets.
func (r *Router) Sessions() *session.Store {
	return r.sessions
}
