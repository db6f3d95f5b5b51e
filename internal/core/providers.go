package core

import "context"

// AIProvider completes a conversation given a system instruction.
// Implementations return an error wrapping ErrUnauthorized on credential failures.
type AIProvider interface {
	Complete(ctx context.Context, history []Message, system string) (string, error)
}
