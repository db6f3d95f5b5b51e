package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/wishbot/internal/transport/cli"
	"github.com/sandevgo/wishbot/pkg/log"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the Wish Granter in the terminal",
	Long:  `Runs the same conversation as the Telegram bot against a local console session. Useful for trying prompts and provider settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		console := cli.NewConsole(os.Stdout)
		repl, cleanup := NewConsoleSession(ctx, console)
		defer func() {
			if err := cleanup(); err != nil {
				log.FromCtx(ctx).Error().Err(err).Msg("failed to close console session")
			}
		}()

		return repl.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
