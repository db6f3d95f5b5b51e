package command

import (
	"context"

	"github.com/sandevgo/wishbot/internal/core"
)

const resetText = "🔄 Диалог сброшен. Можете начать новую беседу! / Chat reset. You can start a new conversation!"

type HistoryClearer interface {
	Clear(ctx context.Context, identity int64)
}

type ResetCommand struct {
	history HistoryClearer
}

func NewResetCommand(history HistoryClearer) *ResetCommand {
	return &ResetCommand{history: history}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Начать новый диалог"
}

func (c *ResetCommand) AdminOnly() bool {
	return false
}

func (c *ResetCommand) Execute(ctx context.Context, req core.CommandRequest) (string, error) {
	c.history.Clear(ctx, req.Identity)
	return resetText, nil
}
