package mailclient

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

// LogMailer only writes the message into log. Used when smtp is not configured.
type LogMailer struct{}

var _ Client = (*LogMailer)(nil)

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := validator.Validate(msg); err != nil {
		return fmt.Errorf("invalid email message: %w", err)
	}

	ylog.Info(ctx, "mail: smtp disabled, message is logged only",
		ylog.KV("to", msg.To),
		ylog.KV("subject", msg.Subject),
		ylog.KV("body", msg.Body),
	)
	return nil
}

func (l *LogMailer) Close() error {
	return nil
}
