package notify

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by channels without provider credentials.
var ErrNotConfigured = errors.New("notification channel not configured")

// Message is a rendered notification ready for a provider.
type Message struct {
	Subject string
	Text    string
	HTML    string
	Link    string
	Data    map[string]string
}

// Sender delivers a message to one recipient address or identifier.
type Sender interface {
	Send(ctx context.Context, recipient string, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, recipient string, msg Message) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, recipient string, msg Message) error {
	return f(ctx, recipient, msg)
}

// Unconfigured is a Sender that always fails with ErrNotConfigured.
type Unconfigured struct{}

// Send implements Sender.
func (Unconfigured) Send(context.Context, string, Message) error {
	return ErrNotConfigured
}
