package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AuditRepo keeps a content-free log of when each identity wrote to the bot.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) RecordMessage(ctx context.Context, identity int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO message_log (identity, created_at) VALUES (?, ?)`,
		identity, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}
