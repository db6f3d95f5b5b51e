package command

import (
	"context"

	"github.com/sandevgo/wishbot/internal/core"
)

type Relayer interface {
	Relay(ctx context.Context, sender int64, raw string)
}

// SendCommand hands the raw text to the relay, which authorizes the sender
// and reports every outcome itself. The command has no reply of its own.
type SendCommand struct {
	relay Relayer
}

func NewSendCommand(relay Relayer) *SendCommand {
	return &SendCommand{relay: relay}
}

func (c *SendCommand) Name() string {
	return "send"
}

func (c *SendCommand) Description() string {
	return "Отправить сообщение пользователю"
}

func (c *SendCommand) AdminOnly() bool {
	return true
}

func (c *SendCommand) Execute(ctx context.Context, req core.CommandRequest) (string, error) {
	c.relay.Relay(ctx, req.Identity, req.Raw)
	return "", nil
}
