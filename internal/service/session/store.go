// Package session persists each participant's conversation as a single
// encrypted blob.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/log"
)

const clearedNotice = "🗑 История диалога удалена\n\n🗑 Chat history has been cleared"

// Notifier delivers side-effect messages to a participant.
type Notifier interface {
	Send(ctx context.Context, to int64, text string, opts core.SendOptions) (core.MessageRef, error)
}

// Store is the only writer of persisted history. None of its operations
// return errors: failures are logged and the conversation carries on.
type Store struct {
	repo     core.BlobRepository
	cipher   *Cipher
	notifier Notifier
	limit    int
}

// NewStore builds a store. limit caps the number of persisted messages
// (newest kept); zero or less keeps everything.
func NewStore(repo core.BlobRepository, cipher *Cipher, notifier Notifier, limit int) *Store {
	return &Store{
		repo:     repo,
		cipher:   cipher,
		notifier: notifier,
		limit:    limit,
	}
}

// Load returns the identity's history, or an empty one when nothing is stored
// or the stored blob cannot be decrypted or decoded.
func (s *Store) Load(ctx context.Context, identity int64) core.History {
	logger := log.FromCtx(ctx)

	blob, err := s.repo.Get(ctx, identity)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			logger.Error().Err(err).Msg("failed to read chat history")
		}
		return core.History{}
	}

	history, err := s.decode(blob)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load chat history, starting fresh")
		return core.History{}
	}

	logger.Debug().Int("count", len(history)).Msg("loaded chat history")
	return history
}

func (s *Store) decode(blob string) (core.History, error) {
	plain, err := s.cipher.Decrypt(blob)
	if err != nil {
		return nil, err
	}

	var history core.History
	if err := json.Unmarshal(plain, &history); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedBlob, err)
	}
	if history == nil {
		history = core.History{}
	}
	return history, nil
}

// Save replaces the identity's stored history with history.
func (s *Store) Save(ctx context.Context, identity int64, history core.History) {
	logger := log.FromCtx(ctx)

	history = history.Tail(s.limit)
	if history == nil {
		history = core.History{}
	}

	data, err := json.Marshal(history)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode chat history")
		return
	}

	blob, err := s.cipher.Encrypt(data)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encrypt chat history")
		return
	}

	if err := s.repo.Put(ctx, identity, blob); err != nil {
		logger.Error().Err(err).Msg("failed to save chat history")
		return
	}

	logger.Info().Int("count", len(history)).Msg("chat history saved")
}

// Clear removes the identity's history and tells the participant about it.
func (s *Store) Clear(ctx context.Context, identity int64) {
	logger := log.FromCtx(ctx)

	if err := s.repo.Delete(ctx, identity); err != nil {
		logger.Error().Err(err).Msg("failed to clear chat history")
		return
	}
	logger.Info().Msg("chat history deleted")

	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Send(ctx, identity, clearedNotice, core.SendOptions{}); err != nil {
		logger.Error().Err(err).Msg("failed to send history cleared notice")
	}
}

// Identities lists everyone with stored history.
func (s *Store) Identities(ctx context.Context) []int64 {
	ids, err := s.repo.List(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to list chat histories")
		return nil
	}
	return ids
}
