package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

type emailService struct {
	sender ports.EmailSender
	from   string
	logger logging.Logger
}

func NewEmailService(sender ports.EmailSender, from string, logger logging.Logger) ports.EmailService {
	return &emailService{
		sender: sender,
		from:   from,
		logger: logger.With("component", "email"),
	}
}

// Send validates msg and hands it to the transport once. Transport errors
// that are not already classified are reported as domain.ErrEmailTransport.
func (s *emailService) Send(ctx context.Context, msg domain.EmailMessage) error {
	if msg.From == "" {
		msg.From = s.from
	}
	if err := validateMessage(msg); err != nil {
		return err
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn(ctx, "email delivery failed", "to", msg.To, "error", err)
		if errors.Is(err, domain.ErrEmailBuild) || errors.Is(err, domain.ErrEmailTransport) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrEmailTransport, err)
	}

	s.logger.Info(ctx, "email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (s *emailService) SendText(ctx context.Context, to, subject, body string) error {
	return s.Send(ctx, domain.EmailMessage{To: to, Subject: subject, Text: body})
}

func (s *emailService) SendHTML(ctx context.Context, to, subject, html string) error {
	return s.Send(ctx, domain.EmailMessage{To: to, Subject: subject, HTML: html})
}

func validateMessage(msg domain.EmailMessage) error {
	if err := validateAddress(msg.To); err != nil {
		return fmt.Errorf("recipient: %w", err)
	}
	if err := validateAddress(msg.From); err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return domain.ErrEmptySubject
	}
	if strings.TrimSpace(msg.Text) == "" && strings.TrimSpace(msg.HTML) == "" {
		return domain.ErrEmptyBody
	}
	return nil
}

func validateAddress(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return domain.ErrEmptyAddress
	}
	if err := validation.Validate(addr, is.Email); err != nil {
		return domain.ErrMalformedAddress
	}
	return nil
}
