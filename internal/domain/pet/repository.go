package pet

import "context"

// Repository persists pets, one per user.
type Repository interface {
	// Get returns the user's pet or an error matching shared.ErrNotFound
	// when the user has not adopted one.
	Get(ctx context.Context, userID string) (*Pet, error)

	// Save replaces the user's pet.
	Save(ctx context.Context, p *Pet) error
}
