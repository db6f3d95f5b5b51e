package core

import (
	"context"
	"time"
)

// BlobRepository persists one opaque history blob per identity.
type BlobRepository interface {
	Get(ctx context.Context, identity int64) (string, error)
	Put(ctx context.Context, identity int64, blob string) error
	Delete(ctx context.Context, identity int64) error
	List(ctx context.Context) ([]int64, error)
}

// AuditRepository records message metadata. It never sees message content.
type AuditRepository interface {
	RecordMessage(ctx context.Context, identity int64, at time.Time) error
}
