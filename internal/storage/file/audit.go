package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// isoMillis matches the "2024-05-01T12:00:00.000Z" timestamps of older logs.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// AuditRepo appends one "<identity>,<timestamp>" line per message to a
// plain text log. It never sees message content.
type AuditRepo struct {
	mu   sync.Mutex
	path string
}

func NewAuditRepo(path string) (*AuditRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create message log directory: %w", err)
	}
	return &AuditRepo{path: path}, nil
}

func (r *AuditRepo) RecordMessage(ctx context.Context, identity int64, at time.Time) error {
	line := fmt.Sprintf("%d,%s\n", identity, at.UTC().Format(isoMillis))

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open message log: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to record message: %w", err)
	}
	return f.Close()
}
