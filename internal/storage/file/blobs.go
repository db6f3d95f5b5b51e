package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/log"
)

const blobExt = ".json"

// BlobRepo keeps one file per identity under dir, named "<identity>.json".
type BlobRepo struct {
	dir string
}

func NewBlobRepo(ctx context.Context, dir string) (*BlobRepo, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	log.FromCtx(ctx).Debug().Str("dir", dir).Msg("file history storage ready")
	return &BlobRepo{dir: dir}, nil
}

func (r *BlobRepo) path(identity int64) string {
	return filepath.Join(r.dir, strconv.FormatInt(identity, 10)+blobExt)
}

func (r *BlobRepo) Get(ctx context.Context, identity int64) (string, error) {
	data, err := os.ReadFile(r.path(identity))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("failed to read history: %w", err)
	}
	return string(data), nil
}

// Put replaces the blob atomically: readers see either the old or the new one.
func (r *BlobRepo) Put(ctx context.Context, identity int64, blob string) error {
	tmp, err := os.CreateTemp(r.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path(identity)); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

func (r *BlobRepo) Delete(ctx context.Context, identity int64) error {
	err := os.Remove(r.path(identity))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

// List returns identities with a stored blob in ascending order.
// Files that are not named after a numeric identity are ignored.
func (r *BlobRepo) List(ctx context.Context) ([]int64, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, blobExt) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, blobExt), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
