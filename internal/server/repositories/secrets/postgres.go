// Package secrets provides the PostgreSQL-backed repository for the
// server's certificate-signing secret (single row, generated at first boot).
package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hlf20010508/transfery/internal/common"
	"github.com/hlf20010508/transfery/internal/dbx"
)

// PostgresRepository implements secret storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (string, error) {
	query := `SELECT secret_key FROM server_secrets WHERE id = 1`

	var secret string
	err := r.db.QueryRowContext(ctx, query).Scan(&secret)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return secret, nil
}

func (r *PostgresRepository) Create(ctx context.Context, secret string, createdAt int64) error {
	query := `INSERT INTO server_secrets (id, secret_key, created_at) VALUES (1, $1, $2)`

	if _, err := r.db.ExecContext(ctx, query, secret, createdAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
