package command

import (
	"github.com/sandevgo/wishbot/internal/core"
)

// NewCommands builds the chat command set. Order matches the command menu.
func NewCommands(
	history HistoryClearer,
	relay Relayer,
	stats ProcessStats,
) []core.Command {
	return []core.Command{
		NewStartCommand(),
		NewResetCommand(history),
		NewWhoCommand(stats),
		NewMyIDCommand(),
		NewSendCommand(relay),
		NewHelpCommand(),
	}
}
