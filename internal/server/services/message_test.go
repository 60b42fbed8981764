package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlf20010508/transfery/internal/server/models"
)

var messageColumns = []string{"id", "content", "timestamp", "is_private", "type", "file_name", "is_complete"}

func TestMessageService_Page(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMessageService(db, newTestManager(), testConfig())

	rows := sqlmock.NewRows(messageColumns).
		AddRow(int64(12), "world", int64(2000), false, "text", nil, nil).
		AddRow(int64(11), "hello", int64(1000), false, "text", nil, nil)
	mock.ExpectQuery(`SELECT .* FROM messages WHERE is_private = FALSE ORDER BY timestamp DESC, id DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(15, 30).
		WillReturnRows(rows)

	items, err := svc.Page(context.Background(), 30, false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(12), items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageService_Page_PrivateAccess(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMessageService(db, newTestManager(), testConfig())

	mock.ExpectQuery(`SELECT .* FROM messages ORDER BY timestamp DESC, id DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(15, 0).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow(int64(3), "secret", int64(500), true, "text", nil, nil))

	items, err := svc.Page(context.Background(), 0, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsPrivate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageService_SyncAfter(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMessageService(db, newTestManager(), testConfig())

	mock.ExpectQuery(`SELECT .* FROM messages WHERE id > \$1 AND is_private = FALSE ORDER BY id ASC`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow(int64(8), "new", int64(3000), false, "text", nil, nil))

	items, err := svc.SyncAfter(context.Background(), 7, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(8), items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageService_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMessageService(db, newTestManager(), testConfig())

	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs("hello", int64(1000), false, models.MessageTypeText, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := svc.Insert(context.Background(), &models.Message{
		Content:   "hello",
		Timestamp: 1000,
		Type:      models.MessageTypeText,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageService_RemoveAll_ReturnsFileNames(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMessageService(db, newTestManager(), testConfig())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT file_name FROM messages`).
		WillReturnRows(sqlmock.NewRows([]string{"file_name"}).
			AddRow("a_1700000000.pdf").
			AddRow("b_1700000001.png"))
	mock.ExpectExec(`DELETE FROM messages`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	names, err := svc.RemoveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1700000000.pdf", "b_1700000001.png"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageService_RemoveAll_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMessageService(db, newTestManager(), testConfig())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT file_name FROM messages`).
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := svc.RemoveAll(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageService_MarkComplete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewMessageService(db, newTestManager(), testConfig())

	mock.ExpectExec(`UPDATE messages SET is_complete = TRUE`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.MarkComplete(context.Background(), 99)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
