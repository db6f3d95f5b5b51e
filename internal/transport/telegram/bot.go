package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sandevgo/wishbot/internal/config"
	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/internal/service/throttle"
	"github.com/sandevgo/wishbot/pkg/log"
	"github.com/sandevgo/wishbot/pkg/retry"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const (
	throttledText  = "⚠️ You're sending too many requests. Please wait a moment before trying again."
	emptyReplyText = "Sorry, I had trouble processing your message. Please try again."
)

// Conversation runs one turn of the wish dialogue.
type Conversation interface {
	Converse(ctx context.Context, identity int64, text string, includeHistory bool) string
}

type Bot struct {
	bot     *tele.Bot
	sender  *Sender
	router  core.CmdRouter
	chat    Conversation
	limiter *throttle.Limiter
	adminID int64
}

// NewTeleBot connects to the Bot API, retrying transient failures.
func NewTeleBot(ctx context.Context, cfg *config.TelegramConfig, retrier *retry.Retrier) (*tele.Bot, error) {
	logger := log.FromCtx(ctx)

	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error().Err(err).Msg("telegram handler failed")
		},
	}

	var b *tele.Bot
	err := retrier.WithNotify(func(attempt int, err error, next time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("next", next).Msg("telegram connection failed, retrying")
	}).Do(ctx, func() error {
		var err error
		b, err = tele.NewBot(pref)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return b, nil
}

func NewBot(
	ctx context.Context,
	b *tele.Bot,
	sender *Sender,
	router core.CmdRouter,
	chat Conversation,
	limiter *throttle.Limiter,
	adminID int64,
) *Bot {
	bot := &Bot{
		bot:     b,
		sender:  sender,
		router:  router,
		chat:    chat,
		limiter: limiter,
		adminID: adminID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})
	b.Use(bot.logging)
	b.Use(bot.throttle)

	b.Handle(tele.OnText, bot.handleMessage)

	return bot
}

func (b *Bot) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	if err := b.registerCommands(); err != nil {
		// The menu is cosmetic, the bot still works without it
		logger.Error().Err(err).Msg("failed to register command menu")
	}

	logger.Info().Str("username", b.bot.Me.Username).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) registerCommands() error {
	all := b.router.ListCommands()

	public := lo.FilterMap(all, func(c core.Command, _ int) (tele.Command, bool) {
		return menuEntry(c), !c.AdminOnly()
	})
	if err := b.bot.SetCommands(public); err != nil {
		return fmt.Errorf("default scope: %w", err)
	}

	if b.adminID == 0 {
		return nil
	}
	admin := lo.Map(all, func(c core.Command, _ int) tele.Command { return menuEntry(c) })
	scope := tele.CommandScope{Type: tele.CommandScopeChat, ChatID: b.adminID}
	if err := b.bot.SetCommands(admin, scope); err != nil {
		return fmt.Errorf("admin scope: %w", err)
	}
	return nil
}

func menuEntry(c core.Command) tele.Command {
	return tele.Command{Text: c.Name(), Description: c.Description()}
}

// requestCtx derives the per-update context carrying the sender identity.
func requestCtx(c tele.Context) context.Context {
	ctx, ok := c.Get(baseContextKey).(context.Context)
	if !ok {
		ctx = context.Background()
	}
	if s := c.Sender(); s != nil {
		ctx = log.WithIdentity(ctx, s.ID)
	}
	return ctx
}

func (b *Bot) logging(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		s := c.Sender()
		if s == nil {
			return next(c)
		}

		kind := "other"
		if m := c.Message(); m != nil && m.Text != "" {
			kind = "text"
		}
		log.FromCtx(requestCtx(c)).Info().
			Str("username", s.Username).
			Str("type", kind).
			Msg("incoming message")
		return next(c)
	}
}

func (b *Bot) throttle(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		s := c.Sender()
		if s == nil {
			return next(c)
		}

		d := b.limiter.Admit(s.ID, time.Now())
		if d.Allowed {
			return next(c)
		}

		log.FromCtx(requestCtx(c)).Warn().
			Dur("retry_after", d.RetryAfter).
			Msg("rate limit exceeded")
		return c.Send(throttledText)
	}
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := requestCtx(c)
	s := c.Sender()
	if s == nil {
		return nil
	}

	req := core.CommandRequest{
		Identity: s.ID,
		Username: s.Username,
		Raw:      c.Text(),
	}
	if out, ok := b.router.Execute(ctx, req); ok {
		if out == "" {
			return nil
		}
		_, err := b.sender.Send(ctx, c.Chat().ID, out, core.SendOptions{Markdown: true})
		return err
	}

	// Backend replies go out as plain text so stray Markdown is shown as written
	reply := b.chat.Converse(ctx, s.ID, c.Text(), true)
	if strings.TrimSpace(reply) == "" {
		reply = emptyReplyText
	}
	_, err := b.sender.Send(ctx, c.Chat().ID, reply, core.SendOptions{})
	return err
}
