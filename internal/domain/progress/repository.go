package progress

import "context"

// Repository persists ledgers, one document per user.
type Repository interface {
	// Get returns the user's ledger, or a fresh one when none is stored.
	Get(ctx context.Context, userID string) (*Progress, error)

	// Save replaces the user's ledger.
	Save(ctx context.Context, p *Progress) error
}
