package challenge

import "context"

// Repository persists challenge records, one per user.
type Repository interface {
	Get(ctx context.Context, userID string) (*Record, error)
	Save(ctx context.Context, r *Record) error
}
