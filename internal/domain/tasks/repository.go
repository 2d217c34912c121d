package tasks

import "context"

// Repository persists task documents, one per user.
type Repository interface {
	// Get returns the user's tasks, refreshed for today; a fresh document when none is stored.
	Get(ctx context.Context, userID string) (*Tasks, error)

	// Save replaces the user's tasks.
	Save(ctx context.Context, t *Tasks) error
}
