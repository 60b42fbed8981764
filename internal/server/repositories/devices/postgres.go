// Package devices provides the PostgreSQL-backed repository for remembered
// authenticated devices.
package devices

import (
	"context"
	"fmt"

	"github.com/hlf20010508/transfery/internal/dbx"
	"github.com/hlf20010508/transfery/internal/server/models"
)

// PostgresRepository implements device storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, item *models.Device) error {
	query := `
		INSERT INTO devices (fingerprint, browser, last_use_timestamp, expiration_timestamp)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (fingerprint)
		DO UPDATE SET
			browser = EXCLUDED.browser,
			last_use_timestamp = EXCLUDED.last_use_timestamp,
			expiration_timestamp = EXCLUDED.expiration_timestamp;
	`
	_, err := r.db.ExecContext(ctx, query,
		item.Fingerprint, item.Browser, item.LastUseTimestamp, item.ExpirationTimestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Touch(ctx context.Context, fingerprint string, lastUseTimestamp int64) error {
	query := `UPDATE devices SET last_use_timestamp = $2 WHERE fingerprint = $1`

	if _, err := r.db.ExecContext(ctx, query, fingerprint, lastUseTimestamp); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Device, error) {
	query := `
		SELECT fingerprint, browser, last_use_timestamp, expiration_timestamp
		FROM devices ORDER BY last_use_timestamp DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select devices: %w", err)
	}
	defer rows.Close()

	var result []*models.Device
	for rows.Next() {
		var item models.Device
		if err := rows.Scan(
			&item.Fingerprint, &item.Browser, &item.LastUseTimestamp, &item.ExpirationTimestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, fingerprint string) error {
	query := `DELETE FROM devices WHERE fingerprint = $1`

	if _, err := r.db.ExecContext(ctx, query, fingerprint); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
