// Package chat runs one conversational turn: history, backend call, marker
// side effects and persistence.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/internal/service/marker"
	"github.com/sandevgo/wishbot/pkg/keylock"
	"github.com/sandevgo/wishbot/pkg/log"
)

const defaultTimeout = 60 * time.Second

type Config struct {
	Superwish  string
	InviteLink string
	// Timeout bounds the backend call. Zero means the default.
	Timeout time.Duration
}

type HistoryStore interface {
	Load(ctx context.Context, identity int64) core.History
	Save(ctx context.Context, identity int64, history core.History)
}

type Orchestrator struct {
	cfg       Config
	store     HistoryStore
	ai        core.AIProvider
	transport core.Transport
	audit     core.AuditRepository
	system    string

	locks *keylock.Map[int64]
	now   func() time.Time
}

// NewOrchestrator wires a turn runner. audit may be nil.
func NewOrchestrator(
	cfg Config,
	store HistoryStore,
	ai core.AIProvider,
	transport core.Transport,
	audit core.AuditRepository,
) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		ai:        ai,
		transport: transport,
		audit:     audit,
		system:    BuildSystemPrompt(cfg.Superwish),
		locks:     keylock.New[int64](),
		now:       time.Now,
	}
}

// Converse runs one turn for identity and returns the text to show the
// participant. It never fails: backend errors become fixed apology texts.
// Turns of the same identity are serialized; other identities run freely.
// ctx is expected to carry the identity-tagged logger of the request.
func (o *Orchestrator) Converse(ctx context.Context, identity int64, text string, includeHistory bool) (reply string) {
	ctx = log.WithTurn(ctx)
	logger := log.FromCtx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("conversation turn panicked")
			reply = apologyText
		}
	}()

	o.recordMetadata(ctx, identity)

	unlock := o.locks.Lock(identity)
	defer unlock()

	if err := o.transport.Typing(ctx, identity); err != nil {
		logger.Warn().Err(err).Msg("failed to send typing indicator")
	}

	var history core.History
	if includeHistory {
		history = o.store.Load(ctx, identity)
	}
	history = append(history, core.NewMessage(core.RoleUser, text, o.now()))

	thinking, err := o.transport.Send(ctx, identity, thinkingText, core.SendOptions{Silent: true})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to send thinking message")
	} else {
		defer o.deleteQuietly(ctx, thinking)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	response, err := o.ai.Complete(callCtx, history, o.system)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("ai completion failed")
		if errors.Is(err, core.ErrUnauthorized) {
			return unauthorizedText
		}
		return apologyText
	}

	o.handleMarkers(ctx, identity, response)
	visible := marker.Strip(response, marker.Known...)

	// Persist the raw reply so the backend keeps seeing its own markers
	history = append(history, core.NewMessage(core.RoleAssistant, response, o.now()))
	o.store.Save(ctx, identity, history)

	return visible
}

// handleMarkers triggers side effects for detected blocks. A superwish takes
// precedence; a plain wish has no side effect beyond logging.
func (o *Orchestrator) handleMarkers(ctx context.Context, identity int64, response string) {
	logger := log.FromCtx(ctx)

	if marker.Has(response, marker.Superwish) {
		logger.Info().Msg("superwish detected")
		o.sendInvitation(ctx, identity)
		return
	}

	if marker.Has(response, marker.Wish) {
		logger.Info().Msg("wish detected")
	}
}

func (o *Orchestrator) sendInvitation(ctx context.Context, identity int64) {
	logger := log.FromCtx(ctx)

	for _, msg := range superwishMessages(o.cfg.InviteLink) {
		if _, err := o.transport.Send(ctx, identity, msg, core.SendOptions{Markdown: true}); err != nil {
			logger.Error().Err(err).Msg("failed to send superwish channel invitation")
			return
		}
	}
	logger.Info().Msg("superwish channel invitation sent")
}

func (o *Orchestrator) deleteQuietly(ctx context.Context, ref core.MessageRef) {
	if err := o.transport.Delete(ctx, ref); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to delete thinking message")
	}
}

func (o *Orchestrator) recordMetadata(ctx context.Context, identity int64) {
	if o.audit == nil {
		return
	}
	if err := o.audit.RecordMessage(ctx, identity, o.now()); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to record message metadata")
	}
}
