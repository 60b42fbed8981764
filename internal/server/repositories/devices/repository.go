package devices

import (
	"context"

	"github.com/hlf20010508/transfery/internal/server/models"
)

// Repository tracks remembered devices keyed by fingerprint. There is no
// expiry sweep; expiration_timestamp is advisory and enforcement happens
// through certificate verification at request time.
type Repository interface {
	// Upsert inserts a device row or refreshes browser, last-use and
	// expiration data for an existing fingerprint.
	Upsert(ctx context.Context, item *models.Device) error

	// Touch updates last_use_timestamp for a known fingerprint.
	// Unknown fingerprints are a no-op, not an error.
	Touch(ctx context.Context, fingerprint string, lastUseTimestamp int64) error

	SelectAll(ctx context.Context) ([]*models.Device, error)
	Remove(ctx context.Context, fingerprint string) error
}
