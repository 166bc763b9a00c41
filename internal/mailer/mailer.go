// Package mailer delivers outbound email. Delivery is best-effort: callers
// record the outcome but never fail a request because of it.
package mailer

import (
	"context"
	"errors"
)

// ErrDisabled is returned by a mailer that has no transport configured.
var ErrDisabled = errors.New("mailer: delivery disabled")

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer sends a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Disabled is used when SMTP is not configured.
type Disabled struct{}

func (Disabled) Send(ctx context.Context, msg Message) error {
	return ErrDisabled
}
