package mailer

import (
	"context"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
)

// LogMailer writes mails to the log instead of sending them.
type LogMailer struct{}

var _ port.Mailer = (*LogMailer)(nil)

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.Warn(ctx, "SMTP not configured, mail not sent", "to", to, "subject", subject, "body", body)
	return nil
}
