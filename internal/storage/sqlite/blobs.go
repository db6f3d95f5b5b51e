package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/wishbot/internal/core"
)

// BlobRepo stores encrypted history blobs in the history_blobs table.
// It holds ciphertext only; the key never reaches the database.
type BlobRepo struct {
	db *sql.DB
}

func NewBlobRepo(db *sql.DB) *BlobRepo {
	return &BlobRepo{db: db}
}

func (r *BlobRepo) Get(ctx context.Context, identity int64) (string, error) {
	var blob string
	err := r.db.QueryRowContext(ctx, `SELECT blob FROM history_blobs WHERE identity = ?`, identity).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("failed to query history blob: %w", err)
	}
	return blob, nil
}

func (r *BlobRepo) Put(ctx context.Context, identity int64, blob string) error {
	query := `INSERT INTO history_blobs (identity, blob, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(identity) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, identity, blob); err != nil {
		return fmt.Errorf("failed to upsert history blob: %w", err)
	}
	return nil
}

func (r *BlobRepo) Delete(ctx context.Context, identity int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history_blobs WHERE identity = ?`, identity); err != nil {
		return fmt.Errorf("failed to delete history blob: %w", err)
	}
	return nil
}

func (r *BlobRepo) List(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT identity FROM history_blobs ORDER BY identity`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history blobs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
