package core

import "time"

const (
	BotName          = "Wish Granter"
	BotUserAgent     = "WishBot/0.1"
	BotRepositoryURL = "https://github.com/sandevgo/wishbot"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a participant's conversation. The JSON shape is the
// persisted history format and must stay stable.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage stamps a message with the given time in epoch milliseconds.
func NewMessage(role, content string, at time.Time) Message {
	return Message{Role: role, Content: content, Timestamp: at.UnixMilli()}
}

// History is the ordered conversation of one participant.
type History []Message

// Tail returns at most the newest n messages, starting at a user message so
// the backend never sees a transcript that opens with an assistant turn.
// n <= 0 means no cap.
func (h History) Tail(n int) History {
	if n <= 0 || len(h) <= n {
		return h
	}
	tail := h[len(h)-n:]
	for len(tail) > 0 && tail[0].Role != RoleUser {
		tail = tail[1:]
	}
	return tail
}
