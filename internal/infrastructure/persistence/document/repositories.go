package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuexi-helper/study-helper/internal/domain/challenge"
	"github.com/xuexi-helper/study-helper/internal/domain/pet"
	"github.com/xuexi-helper/study-helper/internal/domain/progress"
	"github.com/xuexi-helper/study-helper/internal/domain/shared"
	"github.com/xuexi-helper/study-helper/internal/domain/tasks"
	"github.com/xuexi-helper/study-helper/internal/domain/team"
)

// Clock returns the current time.
type Clock func() time.Time

// Repositories bundles the typed repositories over one Store.
type Repositories struct {
	Progress  *ProgressRepository
	Tasks     *TasksRepository
	Pet       *PetRepository
	Challenge *ChallengeRepository
	Team      *TeamRepository
}

// NewRepositories builds every repository on store.
func NewRepositories(store Store, clock Clock, logger *slog.Logger) *Repositories {
	if clock == nil {
		clock = time.Now
	}
	return &Repositories{
		Progress:  NewProgressRepository(store, clock, logger),
		Tasks:     NewTasksRepository(store, clock, logger),
		Pet:       NewPetRepository(store, clock, logger),
		Challenge: NewChallengeRepository(store, clock, logger),
		Team:      NewTeamRepository(store, clock, logger),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// Progress
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Repository.
type ProgressRepository struct {
	docs *Collection[progress.Progress]
}

var _ progress.Repository = (*ProgressRepository)(nil)

// NewProgressRepository creates a ProgressRepository.
func NewProgressRepository(store Store, clock Clock, logger *slog.Logger) *ProgressRepository {
	return &ProgressRepository{docs: NewCollection(store, ConcernProgress, logger,
		func(key string) *progress.Progress { return progress.New(key, clock()) },
		func(key string, p *progress.Progress) { p.Normalize(key) },
	)}
}

// Get implements progress.Repository.
func (r *ProgressRepository) Get(ctx context.Context, userID string) (*progress.Progress, error) {
	return r.docs.Get(ctx, userID)
}

// Save implements progress.Repository.
func (r *ProgressRepository) Save(ctx context.Context, p *progress.Progress) error {
	return r.docs.Put(ctx, p.UserID, p)
}

// ══════════════════════════════════════════════════════════════════════════════
// Tasks
// ══════════════════════════════════════════════════════════════════════════════

// TasksRepository implements tasks.Repository.
type TasksRepository struct {
	docs *Collection[tasks.Tasks]
}

var _ tasks.Repository = (*TasksRepository)(nil)

// NewTasksRepository creates a TasksRepository.
func NewTasksRepository(store Store, clock Clock, logger *slog.Logger) *TasksRepository {
	return &TasksRepository{docs: NewCollection(store, ConcernTasks, logger,
		func(key string) *tasks.Tasks { return tasks.New(key, clock()) },
		func(key string, t *tasks.Tasks) { t.Normalize(key, clock()) },
	)}
}

// Get implements tasks.Repository.
func (r *TasksRepository) Get(ctx context.Context, userID string) (*tasks.Tasks, error) {
	return r.docs.Get(ctx, userID)
}

// Save implements tasks.Repository.
func (r *TasksRepository) Save(ctx context.Context, t *tasks.Tasks) error {
	return r.docs.Put(ctx, t.UserID, t)
}

// ══════════════════════════════════════════════════════════════════════════════
// Pet
// ══════════════════════════════════════════════════════════════════════════════

// PetRepository implements pet.Repository.
type PetRepository struct {
	docs *Collection[pet.Pet]
}

var _ pet.Repository = (*PetRepository)(nil)

// NewPetRepository creates a PetRepository.
func NewPetRepository(store Store, clock Clock, logger *slog.Logger) *PetRepository {
	return &PetRepository{docs: NewCollection(store, ConcernPet, logger,
		func(key string) *pet.Pet { return pet.New(key, pet.TypeDino, clock()) },
		func(key string, p *pet.Pet) { p.Normalize(key, clock()) },
	)}
}

// Get implements pet.Repository.
func (r *PetRepository) Get(ctx context.Context, userID string) (*pet.Pet, error) {
	p, found, err := r.docs.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("pet of %s: %w", userID, shared.ErrDocumentNotFound)
	}
	return p, nil
}

// Save implements pet.Repository.
func (r *PetRepository) Save(ctx context.Context, p *pet.Pet) error {
	return r.docs.Put(ctx, p.UserID, p)
}

// ══════════════════════════════════════════════════════════════════════════════
// Challenge
// ══════════════════════════════════════════════════════════════════════════════

// ChallengeRepository implements challenge.Repository.
type ChallengeRepository struct {
	docs *Collection[challenge.Record]
}

var _ challenge.Repository = (*ChallengeRepository)(nil)

// NewChallengeRepository creates a ChallengeRepository.
func NewChallengeRepository(store Store, clock Clock, logger *slog.Logger) *ChallengeRepository {
	return &ChallengeRepository{docs: NewCollection(store, ConcernChallenge, logger,
		func(key string) *challenge.Record { return challenge.NewRecord(key, clock()) },
		func(key string, r *challenge.Record) { r.Normalize(key, clock()) },
	)}
}

// Get implements challenge.Repository.
func (r *ChallengeRepository) Get(ctx context.Context, userID string) (*challenge.Record, error) {
	return r.docs.Get(ctx, userID)
}

// Save implements challenge.Repository.
func (r *ChallengeRepository) Save(ctx context.Context, rec *challenge.Record) error {
	return r.docs.Put(ctx, rec.UserID, rec)
}

// ══════════════════════════════════════════════════════════════════════════════
// Team
// ══════════════════════════════════════════════════════════════════════════════

// TeamRepository implements team.Repository.
type TeamRepository struct {
	members *Collection[team.Membership]
	rosters *Collection[team.Team]
}

var _ team.Repository = (*TeamRepository)(nil)

// NewTeamRepository creates a TeamRepository.
func NewTeamRepository(store Store, _ Clock, logger *slog.Logger) *TeamRepository {
	return &TeamRepository{
		members: NewCollection(store, ConcernTeam, logger,
			func(key string) *team.Membership { return &team.Membership{UserID: key} },
			func(key string, m *team.Membership) { m.UserID = key },
		),
		rosters: NewCollection[team.Team](store, ConcernTeamRoster, logger,
			func(string) *team.Team { return &team.Team{} },
			nil,
		),
	}
}

// Membership implements team.Repository.
func (r *TeamRepository) Membership(ctx context.Context, userID string) (*team.Membership, error) {
	return r.members.Get(ctx, userID)
}

// SaveMembership implements team.Repository.
func (r *TeamRepository) SaveMembership(ctx context.Context, m *team.Membership) error {
	return r.members.Put(ctx, m.UserID, m)
}

// DeleteMembership implements team.Repository.
func (r *TeamRepository) DeleteMembership(ctx context.Context, userID string) error {
	return r.members.Delete(ctx, userID)
}

// Team implements team.Repository.
func (r *TeamRepository) Team(ctx context.Context, code string) (*team.Team, error) {
	code = team.NormalizeCode(code)
	t, found, err := r.rosters.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	if !found || t.IsZero() {
		return nil, shared.ErrTeamNotFound
	}
	return t, nil
}

// SaveTeam implements team.Repository.
func (r *TeamRepository) SaveTeam(ctx context.Context, t *team.Team) error {
	return r.rosters.Put(ctx, t.Code, t)
}
