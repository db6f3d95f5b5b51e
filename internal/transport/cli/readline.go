package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/sandevgo/wishbot/internal/config"
	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/log"
)

// LocalIdentity is the participant id used for the terminal session.
const LocalIdentity int64 = 1

// Conversation runs one turn of the wish dialogue.
type Conversation interface {
	Converse(ctx context.Context, identity int64, text string, includeHistory bool) string
}

// Console prints outbound messages to a terminal. It implements core.Transport
// so the conversation can run without Telegram.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	nextID int
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Send(ctx context.Context, to int64, text string, opts core.SendOptions) (core.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	if opts.Silent {
		_, err := fmt.Fprintf(c.out, "\033[38;5;240m%s\033[0m\n", text)
		return core.MessageRef{ChatID: to, MessageID: c.nextID}, err
	}
	_, err := fmt.Fprintf(c.out, "%s\n", text)
	return core.MessageRef{ChatID: to, MessageID: c.nextID}, err
}

// Delete is a no-op: printed lines cannot be taken back.
func (c *Console) Delete(ctx context.Context, ref core.MessageRef) error {
	return nil
}

func (c *Console) Typing(ctx context.Context, to int64) error {
	return nil
}

// SetOutput redirects printing, used once readline owns the terminal.
func (c *Console) SetOutput(out io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = out
}

type ReadLine struct {
	console *Console
	router  core.CmdRouter
	chat    Conversation
	rl      *readline.Instance
}

func NewReadLine(
	cfg *config.AppConfig,
	console *Console,
	router core.CmdRouter,
	chat Conversation,
) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "🧞 > ",
		HistoryFile:     cfg.GetInputHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	console.SetOutput(rl.Stdout())

	return &ReadLine{
		console: console,
		router:  router,
		chat:    chat,
		rl:      rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		r.handle(ctx, line)
	}
}

func (r *ReadLine) handle(ctx context.Context, line string) {
	ctx = log.WithIdentity(ctx, LocalIdentity)
	req := core.CommandRequest{Identity: LocalIdentity, Username: "console", Raw: line}
	if out, ok := r.router.Execute(ctx, req); ok {
		if out != "" {
			_, _ = r.console.Send(ctx, LocalIdentity, out, core.SendOptions{})
		}
		return
	}

	reply := r.chat.Converse(ctx, LocalIdentity, line, true)
	if reply == "" {
		reply = "(no visible reply)"
	}
	_, _ = r.console.Send(ctx, LocalIdentity, reply, core.SendOptions{})
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
