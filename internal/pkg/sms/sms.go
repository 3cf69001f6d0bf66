package sms

import (
	"context"
	"io"
)

// Message represents a text message payload.
type Message struct {
	// To is the recipient phone number in national format.
	To string
	// Body is the message text.
	Body string
}

// Sender abstracts an SMS provider (HTTP gateway, third-party API, etc).
type Sender interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
	// Healthy reports whether the provider is reachable and serving.
	Healthy(ctx context.Context) bool
}
