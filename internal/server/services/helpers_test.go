package services

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/hlf20010508/transfery/internal/logging"
	sc "github.com/hlf20010508/transfery/internal/server/config"
	"github.com/hlf20010508/transfery/internal/server/models"
	"github.com/hlf20010508/transfery/internal/server/repositories/repomanager"
)

func testConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return cfg
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestManager() repomanager.RepositoryManager {
	return repomanager.NewPostgresRepositoryManager()
}

type noopLogger struct{}

func (noopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (noopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (noopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (noopLogger) With(args ...any) logging.Logger                    { return noopLogger{} }

// fakeObjectStore records calls and returns canned values, standing in for
// the S3 adapter in service tests.
type fakeObjectStore struct {
	createCalls   []string
	uploadID      string
	createErr     error
	partErr       error
	completeErr   error
	abortErr      error
	completedKeys []string
	abortedIDs    []string
	abortedKeys   []string
}

func (f *fakeObjectStore) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeObjectStore) CreateMultipartUpload(ctx context.Context, key string) (string, error) {
	f.createCalls = append(f.createCalls, key)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.uploadID, nil
}

func (f *fakeObjectStore) UploadPart(ctx context.Context, key, uploadID string, partNumber int32, body io.Reader) (string, error) {
	if f.partErr != nil {
		return "", f.partErr
	}
	return "etag-" + key, nil
}

func (f *fakeObjectStore) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []models.Part) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completedKeys = append(f.completedKeys, key)
	return nil
}

func (f *fakeObjectStore) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	if f.abortErr != nil {
		return f.abortErr
	}
	f.abortedIDs = append(f.abortedIDs, uploadID)
	f.abortedKeys = append(f.abortedKeys, key)
	return nil
}

func (f *fakeObjectStore) RemoveObject(ctx context.Context, key string) error { return nil }

func (f *fakeObjectStore) RemoveAllObjects(ctx context.Context) error { return nil }

func (f *fakeObjectStore) PresignGetURL(ctx context.Context, key string) (string, error) {
	return "http://signed.example/" + key, nil
}
