package email

import (
	"context"

	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

// LogSender writes messages to the log instead of delivering them. It is used
// when no SMTP host is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) ports.EmailSender {
	return &LogSender{logger: logger.With("component", "email.log")}
}

func (s *LogSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	if _, err := buildMessage(msg); err != nil {
		return err
	}
	s.logger.Info(ctx, "email not delivered (log transport)",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
		"html", msg.HTML,
	)
	return nil
}
