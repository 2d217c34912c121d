package eventhandler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuexi-helper/study-helper/internal/domain/pet"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/domain/team"
	"github.com/xuexi-helper/study-helper/internal/infrastructure/persistence/document"
)

var now = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type gate map[string]bool

func (g gate) IsEnabledFor(feature, _ string) bool { return g[feature] }

func newRepos() *document.Repositories {
	return document.NewRepositories(document.NewMemoryStore(), clock, nil)
}

func answered(userID string, correct bool) shared.Event {
	return shared.NewAnswerRecordedEvent(userID, shared.SubjectMath, shared.TopicAddition, correct, "1+1=?")
}

func TestOnAnswerRecorded_UpdatesTasks(t *testing.T) {
	repos := newRepos()
	h := NewOnAnswerRecordedHandler(repos.Tasks, repos.Pet, repos.Team, nil, clock, nil)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, answered("u1", true)))
	require.NoError(t, h.Handle(ctx, answered("u1", false)))

	tk, err := repos.Tasks.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, tk.DailyProgress[shared.SubjectMath])
}

func TestOnAnswerRecorded_PetOnlyWhenAdopted(t *testing.T) {
	repos := newRepos()
	h := NewOnAnswerRecordedHandler(repos.Tasks, repos.Pet, repos.Team, nil, clock, nil)
	ctx := context.Background()

	// No pet: nothing to do, no error.
	require.NoError(t, h.Handle(ctx, answered("u1", true)))
	_, err := repos.Pet.Get(ctx, "u1")
	assert.True(t, shared.IsNotFound(err))

	require.NoError(t, repos.Pet.Save(ctx, pet.New("u1", pet.TypePanda, now)))
	require.NoError(t, h.Handle(ctx, answered("u1", true)))

	p, err := repos.Pet.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Exp)
	assert.Equal(t, 1, p.TotalStudyDays)
}

func TestOnAnswerRecorded_TeamCounters(t *testing.T) {
	repos := newRepos()
	ctx := context.Background()

	tm := team.Create("team-1", "leader", "数学小队", team.DetectKind("数学"), now)
	require.NoError(t, tm.Join("u1", now))
	require.NoError(t, repos.Team.SaveTeam(ctx, tm))
	require.NoError(t, repos.Team.SaveMembership(ctx, &team.Membership{UserID: "u1", TeamCode: tm.Code, Role: team.RoleMember, JoinedAt: now}))

	h := NewOnAnswerRecordedHandler(repos.Tasks, repos.Pet, repos.Team, nil, clock, nil)
	require.NoError(t, h.Handle(ctx, answered("u1", true)))
	require.NoError(t, h.Handle(ctx, answered("u1", false)))

	got, err := repos.Team.Team(ctx, tm.Code)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Daily.TotalQuestions)
	assert.Equal(t, 1, got.Daily.TotalCorrect)
	for _, m := range got.Members {
		if m.UserID == "u1" {
			assert.Equal(t, 2, m.TotalQuestions)
		}
	}
}

func TestOnAnswerRecorded_DanglingMembership(t *testing.T) {
	repos := newRepos()
	ctx := context.Background()
	require.NoError(t, repos.Team.SaveMembership(ctx, &team.Membership{UserID: "u1", TeamCode: "GONE1234"}))

	h := NewOnAnswerRecordedHandler(nil, nil, repos.Team, nil, clock, nil)
	assert.NoError(t, h.Handle(ctx, answered("u1", true)))
}

func TestOnAnswerRecorded_FeatureGate(t *testing.T) {
	repos := newRepos()
	ctx := context.Background()
	h := NewOnAnswerRecordedHandler(repos.Tasks, repos.Pet, repos.Team, gate{shared.FeaturePet: true}, clock, nil)

	require.NoError(t, h.Handle(ctx, answered("u1", true)))

	tk, err := repos.Tasks.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, tk.DailyProgress[shared.SubjectMath])
}

func TestOnAnswerRecorded_IgnoresOtherEvents(t *testing.T) {
	h := NewOnAnswerRecordedHandler(nil, nil, nil, nil, clock, nil)
	assert.NoError(t, h.Handle(context.Background(), shared.NewQuizStartedEvent("u1", shared.SubjectMath, 3, 5)))
}
