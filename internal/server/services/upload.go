package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hlf20010508/transfery/internal/common"
	"github.com/hlf20010508/transfery/internal/logging"
	sc "github.com/hlf20010508/transfery/internal/server/config"
	"github.com/hlf20010508/transfery/internal/server/models"
	"github.com/hlf20010508/transfery/internal/server/storage"
)

// replaceable in tests
var now = time.Now

// uploadSession is the per-upload bookkeeping entry. Sessions exist only
// between Create and Complete; the janitor aborts the ones clients walked
// away from.
type uploadSession struct {
	fileName  string
	createdAt time.Time
}

// UploadService coordinates multipart upload sessions against the object
// store: it derives stable object keys, tracks open sessions and reaps
// abandoned ones.
type UploadService struct {
	store      storage.ObjectStore
	messages   *MessageService
	sessionTTL time.Duration
	log        logging.Logger

	mu       sync.Mutex
	sessions map[string]uploadSession
}

func NewUploadService(store storage.ObjectStore, messages *MessageService, cfg *sc.Config, log logging.Logger) *UploadService {
	return &UploadService{
		store:      store,
		messages:   messages,
		sessionTTL: cfg.UploadSessionTTL,
		log:        log,
		sessions:   make(map[string]uploadSession),
	}
}

// Create opens a multipart session for a file with the given display name
// and client timestamp (milliseconds). It returns the store-assigned upload
// ID together with the derived object key; the client echoes both on every
// subsequent part.
func (s *UploadService) Create(ctx context.Context, displayName string, timestamp int64) (uploadID, fileName string, err error) {
	fileName = deriveObjectKey(displayName, timestamp)

	uploadID, err = s.store.CreateMultipartUpload(ctx, fileName)
	if err != nil {
		return "", "", fmt.Errorf("error creating multipart upload: %w", err)
	}

	s.mu.Lock()
	s.sessions[uploadID] = uploadSession{fileName: fileName, createdAt: now()}
	s.mu.Unlock()

	return uploadID, fileName, nil
}

// UploadPart forwards one chunk to the store and returns its etag. Part
// numbers start at 1.
func (s *UploadService) UploadPart(ctx context.Context, fileName, uploadID string, partNumber int32, body io.Reader) (string, error) {
	etag, err := s.store.UploadPart(ctx, fileName, uploadID, partNumber, body)
	if err != nil {
		return "", fmt.Errorf("error uploading part %d: %w", partNumber, err)
	}
	return etag, nil
}

// Complete finalizes the session with the full part list and flips the
// associated file message to downloadable. The session leaves the ledger
// even when the database update fails; the object is already assembled at
// that point and must not be reaped.
func (s *UploadService) Complete(ctx context.Context, fileName, uploadID string, parts []models.Part, messageID int64) error {
	if err := s.store.CompleteMultipartUpload(ctx, fileName, uploadID, parts); err != nil {
		return fmt.Errorf("error completing multipart upload: %w", err)
	}

	s.mu.Lock()
	delete(s.sessions, uploadID)
	s.mu.Unlock()

	if err := s.messages.MarkComplete(ctx, messageID); err != nil {
		return err
	}
	return nil
}

// Abort discards an open session. Unknown upload IDs yield
// common.ErrUploadSessionNotFound.
func (s *UploadService) Abort(ctx context.Context, uploadID string) error {
	s.mu.Lock()
	session, ok := s.sessions[uploadID]
	if ok {
		delete(s.sessions, uploadID)
	}
	s.mu.Unlock()

	if !ok {
		return common.ErrUploadSessionNotFound
	}

	if err := s.store.AbortMultipartUpload(ctx, session.fileName, uploadID); err != nil {
		return fmt.Errorf("error aborting multipart upload: %w", err)
	}
	return nil
}

// StartJanitor launches the background reaper that aborts sessions older
// than the configured TTL. It stops when ctx is cancelled.
func (s *UploadService) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reapExpired(ctx)
			}
		}
	}()
}

// reapExpired aborts every tracked session whose age exceeds the TTL.
func (s *UploadService) reapExpired(ctx context.Context) {
	cutoff := now().Add(-s.sessionTTL)

	s.mu.Lock()
	expired := make(map[string]uploadSession)
	for id, session := range s.sessions {
		if session.createdAt.Before(cutoff) {
			expired[id] = session
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for id, session := range expired {
		if err := s.store.AbortMultipartUpload(ctx, session.fileName, id); err != nil {
			s.log.Warn(ctx, "failed to abort stale upload", "uploadId", id, "fileName", session.fileName, "error", err)
			continue
		}
		s.log.Info(ctx, "aborted stale upload", "uploadId", id, "fileName", session.fileName)
	}
}
