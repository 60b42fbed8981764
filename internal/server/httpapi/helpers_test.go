package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/hlf20010508/transfery/internal/logging"
	"github.com/hlf20010508/transfery/internal/server/broadcast"
	sc "github.com/hlf20010508/transfery/internal/server/config"
	"github.com/hlf20010508/transfery/internal/server/models"
	"github.com/hlf20010508/transfery/internal/server/repositories/repomanager"
	"github.com/hlf20010508/transfery/internal/server/services"
)

type noopLogger struct{}

func (noopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (noopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (noopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (noopLogger) With(args ...any) logging.Logger                    { return noopLogger{} }

// fakeStore is an in-memory ObjectStore double for handler tests.
type fakeStore struct {
	uploadID        string
	removed         []string
	removedAllCount int
	presignErr      error
	completedIDs    []string
}

func (f *fakeStore) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeStore) CreateMultipartUpload(ctx context.Context, key string) (string, error) {
	return f.uploadID, nil
}

func (f *fakeStore) UploadPart(ctx context.Context, key, uploadID string, partNumber int32, body io.Reader) (string, error) {
	return "etag-" + key, nil
}

func (f *fakeStore) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []models.Part) error {
	f.completedIDs = append(f.completedIDs, uploadID)
	return nil
}

func (f *fakeStore) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	return nil
}

func (f *fakeStore) RemoveObject(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeStore) RemoveAllObjects(ctx context.Context) error {
	f.removedAllCount++
	return nil
}

func (f *fakeStore) PresignGetURL(ctx context.Context, key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "http://signed.example/" + key, nil
}

type testServer struct {
	srv   *Server
	mock  sqlmock.Sqlmock
	store *fakeStore
	hub   *broadcast.Hub
	certs *services.CertificateService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	cfg := &sc.Config{}
	cfg.LoadDefaults()

	mgr := repomanager.NewPostgresRepositoryManager()
	log := noopLogger{}

	messages := services.NewMessageService(db, mgr, cfg)
	certificates := services.NewCertificateService(db, mgr, cfg, log)

	mock.ExpectQuery(`SELECT secret_key FROM server_secrets`).
		WillReturnRows(sqlmock.NewRows([]string{"secret_key"}).AddRow("deadbeef"))
	require.NoError(t, certificates.Init(context.Background()))

	store := &fakeStore{uploadID: "up-1"}
	uploads := services.NewUploadService(store, messages, cfg, log)
	hub := broadcast.NewHub(log)

	return &testServer{
		srv:   NewServer(messages, uploads, certificates, store, hub, log),
		mock:  mock,
		store: store,
		hub:   hub,
		certs: certificates,
	}
}

// authHeader issues a real certificate and encodes the Authorization header
// value a logged-in client would send.
func authHeader(t *testing.T, ts *testServer, fingerprint string) string {
	t.Helper()

	cert, _, err := ts.certs.Issue(context.Background(), "admin", "admin", fingerprint, "test", false)
	require.NoError(t, err)

	raw, err := json.Marshal(authorization{Fingerprint: fingerprint, Certificate: cert})
	require.NoError(t, err)
	return string(raw)
}

var messageColumns = []string{"id", "content", "timestamp", "is_private", "type", "file_name", "is_complete"}
