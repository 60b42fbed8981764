// Package services contains the application services of the transfery
// server: feed sync, multipart upload coordination and certificate
// issuance/verification. Services own the business rules; repositories and
// the object store stay narrow.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hlf20010508/transfery/internal/dbx"
	sc "github.com/hlf20010508/transfery/internal/server/config"
	"github.com/hlf20010508/transfery/internal/server/models"
	"github.com/hlf20010508/transfery/internal/server/repositories/repomanager"
)

// MessageService serves paginated and incremental reads of the feed with
// privacy filtering, and the feed mutations behind them.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewMessageService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *MessageService {
	return &MessageService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

// Page returns one display-ordered window of the feed. offset counts the
// items the client already has; the window length is the configured page
// size. Private messages are excluded before the window is applied when
// accessPrivate is false.
func (s *MessageService) Page(ctx context.Context, offset int, accessPrivate bool) ([]*models.Message, error) {
	repo := s.repomanager.Messages(s.db)

	items, err := repo.SelectPage(ctx, offset, s.config.ItemsPerPage, accessPrivate)
	if err != nil {
		return nil, fmt.Errorf("error querying message page: %w", err)
	}
	return items, nil
}

// SyncAfter returns every message with id > lastID, privacy filtered. No
// upper bound; the cursor is the caller's highest seen id.
func (s *MessageService) SyncAfter(ctx context.Context, lastID int64, accessPrivate bool) ([]*models.Message, error) {
	repo := s.repomanager.Messages(s.db)

	items, err := repo.SelectAfterID(ctx, lastID, accessPrivate)
	if err != nil {
		return nil, fmt.Errorf("error querying messages after id: %w", err)
	}
	return items, nil
}

// Insert appends a message to the feed and returns its assigned id.
func (s *MessageService) Insert(ctx context.Context, item *models.Message) (int64, error) {
	repo := s.repomanager.Messages(s.db)

	id, err := repo.Insert(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("error inserting message: %w", err)
	}
	return id, nil
}

// Remove deletes one message row. Blob cleanup is the caller's concern so
// a failed object delete never blocks the row delete.
func (s *MessageService) Remove(ctx context.Context, id int64) error {
	repo := s.repomanager.Messages(s.db)

	if err := repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("error removing message: %w", err)
	}
	return nil
}

// RemoveAll deletes every message and returns the object keys of the file
// messages that were referenced, so the caller can cascade the blob-store
// cleanup. Collecting keys and deleting rows happen in one transaction.
func (s *MessageService) RemoveAll(ctx context.Context) ([]string, error) {
	var fileNames []string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Messages(tx)

		names, err := repo.SelectFileNames(ctx)
		if err != nil {
			return err
		}
		fileNames = names

		return repo.RemoveAll(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("error removing all messages: %w", err)
	}

	return fileNames, nil
}

// MarkComplete flips a file message to downloadable after its multipart
// upload has been finalized.
func (s *MessageService) MarkComplete(ctx context.Context, id int64) error {
	repo := s.repomanager.Messages(s.db)

	if err := repo.MarkComplete(ctx, id); err != nil {
		return fmt.Errorf("error marking message complete: %w", err)
	}
	return nil
}
