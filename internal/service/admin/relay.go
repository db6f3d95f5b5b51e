// Package admin lets the operator push messages into other participants'
// conversations.
package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/pkg/log"
)

const (
	rejectedText  = "❌ You don't have permission to use this command."
	usageText     = "❌ Invalid format. Use: /send userId message"
	forwardPrefix = "📩 Message from admin:\n\n"
	confirmText   = "✅ Message sent to user %d"
	failedText    = "❌ Failed to send message. Please try again later."
)

// SendCommand is the parsed form of "/send <target> <body>".
type SendCommand struct {
	Target int64
	Body   string
}

type Relay struct {
	registry  core.OperatorRegistry
	transport core.Transport
}

func NewRelay(registry core.OperatorRegistry, transport core.Transport) *Relay {
	return &Relay{
		registry:  registry,
		transport: transport,
	}
}

// Relay authorizes sender and forwards the body of raw to its target.
// Every outcome is reported back to sender through the transport.
func (r *Relay) Relay(ctx context.Context, sender int64, raw string) {
	logger := log.FromCtx(ctx)

	if !r.registry.IsActiveOperator(ctx, sender) {
		logger.Warn().Msg("unauthorized relay attempt")
		r.reply(ctx, sender, rejectedText)
		return
	}

	cmd, ok := ParseSend(raw)
	if !ok {
		r.reply(ctx, sender, usageText)
		return
	}

	if _, err := r.transport.Send(ctx, cmd.Target, forwardPrefix+cmd.Body, core.SendOptions{}); err != nil {
		logger.Error().Err(err).Int64("target", cmd.Target).Msg("failed to relay admin message")
		r.reply(ctx, sender, failedText)
		return
	}

	logger.Info().Int64("target", cmd.Target).Msg("admin message relayed")
	r.reply(ctx, sender, fmt.Sprintf(confirmText, cmd.Target))
}

func (r *Relay) reply(ctx context.Context, to int64, text string) {
	if _, err := r.transport.Send(ctx, to, text, core.SendOptions{}); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to reply to operator")
	}
}

// ParseSend parses "/send <digits> <body>", also in the "/send@botname"
// form. The body keeps its inner newlines and must contain at least one
// character.
func ParseSend(raw string) (SendCommand, bool) {
	rest, ok := strings.CutPrefix(raw, "/send")
	if ok && strings.HasPrefix(rest, "@") {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end <= 1 {
			return SendCommand{}, false
		}
		rest = rest[end:]
	}
	if !ok || rest == "" || !unicode.IsSpace(rune(rest[0])) {
		return SendCommand{}, false
	}
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)

	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end <= 0 {
		return SendCommand{}, false
	}
	digits, tail := rest[:end], rest[end:]
	if !unicode.IsSpace(rune(tail[0])) {
		return SendCommand{}, false
	}

	target, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return SendCommand{}, false
	}

	body := strings.TrimLeftFunc(tail, unicode.IsSpace)
	if body == "" {
		return SendCommand{}, false
	}
	return SendCommand{Target: target, Body: body}, true
}
