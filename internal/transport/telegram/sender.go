package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/conv"
	"github.com/sandevgo/wishbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

// Sender is the outbound half of the bot. It is created before the update
// handlers so the services producing side effects can hold it.
type Sender struct {
	bot *tele.Bot
}

func NewSender(bot *tele.Bot) *Sender {
	return &Sender{bot: bot}
}

// Send delivers text, converting Markdown to Telegram HTML when asked, and
// splits it into chunks if needed. The reference of the first chunk is returned.
func (s *Sender) Send(ctx context.Context, to int64, text string, opts core.SendOptions) (core.MessageRef, error) {
	logger := log.FromCtx(ctx)

	body, mode := render(text, opts.Markdown)
	if body == "" {
		return core.MessageRef{}, fmt.Errorf("refusing to send empty message to %d", to)
	}

	var first core.MessageRef
	for i, chunk := range splitHTML(body, maxTelegramMsgLen) {
		sendOpts := &tele.SendOptions{ParseMode: mode}
		if opts.Silent && i == 0 {
			sendOpts.DisableNotification = true
		}

		msg, err := s.bot.Send(tele.ChatID(to), chunk, sendOpts)
		if err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return first, err
		}
		if i == 0 {
			first = core.MessageRef{ChatID: to, MessageID: msg.ID}
		}
	}
	return first, nil
}

func (s *Sender) Delete(ctx context.Context, ref core.MessageRef) error {
	return s.bot.Delete(tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	})
}

func (s *Sender) Typing(ctx context.Context, to int64) error {
	return s.bot.Notify(tele.ChatID(to), tele.Typing)
}

func render(text string, markdown bool) (string, tele.ParseMode) {
	if !markdown {
		return strings.TrimSpace(text), tele.ModeDefault
	}
	return strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(text))), tele.ModeHTML
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		// Try to find a good break point (newline) in the second half of the chunk
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		} else {
			cut = runeBoundary(text, cut)
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}

// runeBoundary moves cut back so it does not split a UTF-8 sequence.
func runeBoundary(text string, cut int) int {
	for cut > 1 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}
