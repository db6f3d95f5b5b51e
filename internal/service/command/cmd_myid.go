package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/wishbot/internal/core"
)

type MyIDCommand struct {
	formatter *ResponseFormatter
}

func NewMyIDCommand() *MyIDCommand {
	return &MyIDCommand{formatter: NewResponseFormatter()}
}

func (c *MyIDCommand) Name() string {
	return "myid"
}

func (c *MyIDCommand) Description() string {
	return "Получить ваш Telegram ID"
}

func (c *MyIDCommand) AdminOnly() bool {
	return false
}

func (c *MyIDCommand) Execute(ctx context.Context, req core.CommandRequest) (string, error) {
	username := req.Username
	if username == "" {
		username = "none"
	}
	return c.formatter.Combine(
		c.formatter.Label("Your Telegram ID", fmt.Sprintf("%d", req.Identity)),
		c.formatter.Label("Username", "@"+username),
	), nil
}
