package session

import (
	"context"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/log"
)

const rebootNotice = "🔄 Memory Reboot: Предыдущий контекст разговора сброшен для обеспечения безопасности."

// RebootNotifier tells everyone with stored history that it became
// unreadable: the encryption key does not survive a restart.
type RebootNotifier struct {
	store    *Store
	notifier Notifier
}

func NewRebootNotifier(store *Store, notifier Notifier) *RebootNotifier {
	return &RebootNotifier{store: store, notifier: notifier}
}

// Start sends the notices once and returns.
func (r *RebootNotifier) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	ids := r.store.Identities(ctx)
	sent := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.notifier.Send(ctx, id, rebootNotice, core.SendOptions{}); err != nil {
			logger.Warn().Err(err).Int64("identity", id).Msg("failed to send reboot notification")
			continue
		}
		sent++
	}

	logger.Info().Int("notified", sent).Int("total", len(ids)).Msg("reboot notifications sent")
	return nil
}

func (r *RebootNotifier) Shutdown(ctx context.Context) error {
	return nil
}
