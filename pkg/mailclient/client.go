package mailclient

import (
	"context"
	"io"
)

// Client sends one e-mail message to all recipients.
type Client interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// Message is plain text e-mail ready to send.
type Message struct {
	From    string   `validate:"required,email"`
	To      []string `validate:"required,min=1,dive,email"`
	Subject string   `validate:"required"`
	Body    string   `validate:"required"`
}
