package secrets

import "context"

// Repository persists the server signing secret. The secret is written
// exactly once, at first initialization; there is no rotation path.
type Repository interface {
	// Get returns the stored secret, or common.ErrorNotFound if the
	// server has never been initialized.
	Get(ctx context.Context) (string, error)

	// Create stores the secret. Fails if one already exists.
	Create(ctx context.Context, secret string, createdAt int64) error
}
