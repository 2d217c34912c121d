package team

import "context"

// Repository persists rosters (keyed by invite code) and the per-user
// membership pointers.
type Repository interface {
	// Membership returns the user's pointer; an empty one when the user has no team.
	Membership(ctx context.Context, userID string) (*Membership, error)
	SaveMembership(ctx context.Context, m *Membership) error
	DeleteMembership(ctx context.Context, userID string) error

	// Team returns the roster for an invite code or shared.ErrTeamNotFound.
	Team(ctx context.Context, code string) (*Team, error)
	SaveTeam(ctx context.Context, t *Team) error
}
