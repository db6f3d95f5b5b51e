package core

import "context"

// CommandRequest carries everything a chat command needs about its invocation.
type CommandRequest struct {
	Identity int64
	Username string
	// Raw is the full command text, including the command name and newlines.
	Raw  string
	Args []string
}

type CmdRouter interface {
	Execute(ctx context.Context, req CommandRequest) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	// AdminOnly commands are listed only in the operator's command menu.
	AdminOnly() bool
	Execute(ctx context.Context, req CommandRequest) (string, error)
}
