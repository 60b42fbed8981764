package messages

import (
	"context"

	"github.com/hlf20010508/transfery/internal/server/models"
)

// Repository is the narrow feed-log interface consumed by the sync and
// upload services. Implementations must preserve insertion-order ID
// assignment; sync cursors depend on it.
type Repository interface {
	// Insert appends a message and returns the ID assigned by the store.
	Insert(ctx context.Context, item *models.Message) (int64, error)

	// SelectPage returns a display-ordered window of the feed
	// (timestamp desc, id desc). When accessPrivate is false, private
	// messages are excluded before the offset/limit window is applied.
	SelectPage(ctx context.Context, offset, limit int, accessPrivate bool) ([]*models.Message, error)

	// SelectAfterID returns all messages with id > lastID in id order,
	// respecting the same privacy filter as SelectPage.
	SelectAfterID(ctx context.Context, lastID int64, accessPrivate bool) ([]*models.Message, error)

	// SelectFileNames returns the object keys of all file messages.
	SelectFileNames(ctx context.Context) ([]string, error)

	// MarkComplete flips is_complete to true for a file message.
	// Returns common.ErrorNotFound if no such row exists.
	MarkComplete(ctx context.Context, id int64) error

	Remove(ctx context.Context, id int64) error
	RemoveAll(ctx context.Context) error
}
