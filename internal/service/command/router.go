package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/log"
)

type Router struct {
	commands  map[string]core.Command
	ordered   []core.Command
	formatter *ResponseFormatter
}

func New(commands []core.Command) *Router {
	c := &Router{
		commands:  make(map[string]core.Command),
		formatter: NewResponseFormatter(),
	}

	for _, cmd := range commands {
		if _, dup := c.commands[cmd.Name()]; dup {
			continue
		}
		c.commands[cmd.Name()] = cmd
		c.ordered = append(c.ordered, cmd)
	}
	return c
}

// Execute runs the command named by req.Raw. The second result is false when
// the input is not a command at all and should be handled as conversation.
func (c *Router) Execute(ctx context.Context, req core.CommandRequest) (string, bool) {
	if !strings.HasPrefix(req.Raw, "/") {
		return "", false
	}

	parts := strings.Fields(req.Raw)
	if len(parts) == 0 {
		return "", false
	}
	// Group chats address commands as /name@botname
	name, _, _ := strings.Cut(strings.TrimPrefix(parts[0], "/"), "@")
	if req.Args == nil {
		req.Args = parts[1:]
	}

	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s", name), true
	}

	log.FromCtx(ctx).Info().Str("command", name).Msg("executing command")

	result, err := cmd.Execute(ctx, req)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("command", name).Msg("command failed")
		return c.formatter.Error(err), true
	}
	return result, true
}

// ListCommands returns the registered commands in registration order.
func (c *Router) ListCommands() []core.Command {
	return append([]core.Command(nil), c.ordered...)
}
