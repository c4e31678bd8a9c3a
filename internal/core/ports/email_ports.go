package ports

import (
	"context"

	"github.com/vncsmyrnk/postbox/internal/core/domain"
)

// EmailSender delivers an already validated message.
type EmailSender interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

type EmailService interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
	SendText(ctx context.Context, to, subject, body string) error
	SendHTML(ctx context.Context, to, subject, html string) error
}
