package core

import "context"

// MessageRef identifies a message previously sent to a participant.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	// Markdown renders the text as Markdown before delivery.
	Markdown bool
	Silent   bool
}

// Transport is the outbound side of a chat channel.
type Transport interface {
	Send(ctx context.Context, to int64, text string, opts SendOptions) (MessageRef, error)
	Delete(ctx context.Context, ref MessageRef) error
	Typing(ctx context.Context, to int64) error
}

// OperatorRegistry answers whether an identity may use privileged commands.
type OperatorRegistry interface {
	IsActiveOperator(ctx context.Context, identity int64) bool
}
