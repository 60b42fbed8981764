// Package messages provides the PostgreSQL-backed repository for the
// ordered message feed.
package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hlf20010508/transfery/internal/common"
	"github.com/hlf20010508/transfery/internal/dbx"
	"github.com/hlf20010508/transfery/internal/server/models"
)

// PostgresRepository implements message storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, content, timestamp, is_private, type, file_name, is_complete`

func (r *PostgresRepository) Insert(ctx context.Context, item *models.Message) (int64, error) {
	query := `
		INSERT INTO messages (content, timestamp, is_private, type, file_name, is_complete)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		item.Content, item.Timestamp, item.IsPrivate, item.Type, item.FileName, item.IsComplete,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) SelectPage(ctx context.Context, offset, limit int, accessPrivate bool) ([]*models.Message, error) {
	query := `SELECT ` + selectColumns + ` FROM messages `
	if !accessPrivate {
		query += `WHERE is_private = FALSE `
	}
	query += `ORDER BY timestamp DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select message page: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *PostgresRepository) SelectAfterID(ctx context.Context, lastID int64, accessPrivate bool) ([]*models.Message, error) {
	query := `SELECT ` + selectColumns + ` FROM messages WHERE id > $1`
	if !accessPrivate {
		query += ` AND is_private = FALSE`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, lastID)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages after id: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *PostgresRepository) SelectFileNames(ctx context.Context) ([]string, error) {
	query := `SELECT file_name FROM messages WHERE type = 'file' AND file_name IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select file names: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) MarkComplete(ctx context.Context, id int64) error {
	query := `UPDATE messages SET is_complete = TRUE WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM messages WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveAll(ctx context.Context) error {
	query := `DELETE FROM messages`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanMessages(rows *sql.Rows) ([]*models.Message, error) {
	var result []*models.Message
	for rows.Next() {
		var item models.Message
		var fileName sql.NullString
		var isComplete sql.NullBool
		if err := rows.Scan(
			&item.ID, &item.Content, &item.Timestamp, &item.IsPrivate, &item.Type,
			&fileName, &isComplete,
		); err != nil {
			return nil, err
		}
		if fileName.Valid {
			item.FileName = &fileName.String
		}
		if isComplete.Valid {
			item.IsComplete = &isComplete.Bool
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
