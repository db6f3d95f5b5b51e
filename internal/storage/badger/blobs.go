package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/log"
)

// Keys are "history:" followed by the identity as a big-endian uint64 with the
// sign bit flipped, so iteration order matches numeric order.
var historyPrefix = []byte("history:")

func historyKey(identity int64) []byte {
	key := make([]byte, len(historyPrefix)+8)
	copy(key, historyPrefix)
	binary.BigEndian.PutUint64(key[len(historyPrefix):], uint64(identity)^(1<<63))
	return key
}

func identityFromKey(key []byte) (int64, bool) {
	if len(key) != len(historyPrefix)+8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(key[len(historyPrefix):]) ^ (1 << 63)), true
}

// Open opens (or creates) a badger store in dir with quiet logging.
func Open(ctx context.Context, dir string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	log.FromCtx(ctx).Debug().Str("dir", dir).Msg("badger history storage ready")
	return db, nil
}

type BlobRepo struct {
	db *badger.DB
}

func NewBlobRepo(db *badger.DB) *BlobRepo {
	return &BlobRepo{db: db}
}

func (r *BlobRepo) Get(ctx context.Context, identity int64) (string, error) {
	var blob string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(historyKey(identity))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			blob = string(v)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read history: %w", err)
	}
	return blob, nil
}

func (r *BlobRepo) Put(ctx context.Context, identity int64, blob string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(identity), []byte(blob))
	})
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Delete is idempotent: badger treats deleting a missing key as a no-op.
func (r *BlobRepo) Delete(ctx context.Context, identity int64) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(historyKey(identity))
	})
	if err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

// List returns identities with a stored blob in ascending order.
func (r *BlobRepo) List(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(historyPrefix); it.ValidForPrefix(historyPrefix); it.Next() {
			if id, ok := identityFromKey(it.Item().Key()); ok {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return ids, nil
}
