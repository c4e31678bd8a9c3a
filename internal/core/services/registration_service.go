package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

const usernameAttempts = 3

type registrationService struct {
	store    ports.Store
	hasher   ports.PasswordHasher
	email    ports.EmailService
	logger   logging.Logger
	ttl      time.Duration
	cooldown time.Duration

	now         func() time.Time
	newSecret   func() (string, error)
	newUsername func() (string, error)
}

func NewRegistrationService(store ports.Store, hasher ports.PasswordHasher, email ports.EmailService, ttl, cooldown time.Duration, logger logging.Logger) ports.RegistrationService {
	return &registrationService{
		store:       store,
		hasher:      hasher,
		email:       email,
		logger:      logger.With("component", "registration"),
		ttl:         ttl,
		cooldown:    cooldown,
		now:         time.Now,
		newSecret:   func() (string, error) { return NumericCode(secretKeyLength) },
		newUsername: func() (string, error) { return AlphanumericCode(usernameLength) },
	}
}

func (s *registrationService) Start(ctx context.Context, email, password string) (string, error) {
	taken, err := s.store.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return "", domain.ErrEmailAlreadyTaken
	}

	now := s.now()
	cutoff := now.Add(-s.cooldown)

	pending, err := s.store.Registrations().FindPending(ctx, email)
	switch {
	case err == nil:
		if pending.CreatedAt.After(cutoff) {
			return "", domain.ErrRegistrationInProgress
		}
	case errors.Is(err, domain.ErrRegistrationNotFound):
	default:
		return "", fmt.Errorf("failed to check pending registration: %w", err)
	}

	secretKey, err := s.newSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	reg := &domain.TempRegistration{
		Email:        email,
		PasswordHash: hash,
		SecretKey:    secretKey,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.store.Registrations().Upsert(ctx, reg, cutoff); err != nil {
		return "", fmt.Errorf("failed to store registration: %w", err)
	}

	if err := s.sendConfirmation(ctx, email, secretKey); err != nil {
		if delErr := s.store.Registrations().Delete(ctx, reg.ID); delErr != nil {
			s.logger.Error(ctx, "failed to discard registration", "email", email, "error", delErr)
		}
		return "", fmt.Errorf("%w: failed to send confirmation email: %v", domain.ErrInternal, err)
	}

	s.logger.Info(ctx, "registration started", "email", email, "expires_at", reg.ExpiresAt)
	return secretKey, nil
}

func (s *registrationService) Complete(ctx context.Context, email, secretKey string) (string, error) {
	var username string
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		// Expired rows are filtered out here, so they read as not found.
		reg, err := repos.Registrations().FindActive(ctx, email, secretKey, s.now())
		if err != nil {
			return err
		}
		if reg.Confirmed {
			return domain.ErrRegistrationConfirmed
		}

		name, err := s.freeUsername(ctx, repos.Users())
		if err != nil {
			return err
		}

		user := &domain.User{
			Username:     name,
			Email:        reg.Email,
			PasswordHash: reg.PasswordHash,
		}
		if err := repos.Users().Create(ctx, user); err != nil {
			if errors.Is(err, domain.ErrUsernameTaken) {
				return fmt.Errorf("%w: generated username %q already taken", domain.ErrInternal, name)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if err := repos.Registrations().MarkConfirmed(ctx, reg.ID); err != nil {
			return fmt.Errorf("failed to confirm registration: %w", err)
		}
		if _, err := repos.Registrations().DeleteByEmail(ctx, email); err != nil {
			return fmt.Errorf("failed to delete registration: %w", err)
		}

		username = name
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "registration completed", "email", email, "username", username)
	return username, nil
}

func (s *registrationService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.store.Registrations().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired registrations: %w", err)
	}
	return n, nil
}

func (s *registrationService) freeUsername(ctx context.Context, users ports.UserRepository) (string, error) {
	for i := 0; i < usernameAttempts; i++ {
		name, err := s.newUsername()
		if err != nil {
			return "", fmt.Errorf("failed to generate username: %w", err)
		}

		exists, err := users.ExistsByUsername(ctx, name)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no free username after %d attempts", domain.ErrInternal, usernameAttempts)
}

func (s *registrationService) sendConfirmation(ctx context.Context, to, secretKey string) error {
	hours := int(s.ttl.Hours())
	msg := domain.EmailMessage{
		To:      to,
		Subject: "Confirm your registration",
		Text: fmt.Sprintf(
			"Your confirmation code is %s.\n\nEnter it to finish creating your account. The code expires in %d hours.\n",
			secretKey, hours,
		),
		HTML: fmt.Sprintf(
			"<p>Your confirmation code is <strong>%s</strong>.</p><p>Enter it to finish creating your account. The code expires in %d hours.</p>",
			secretKey, hours,
		),
	}
	return s.email.Send(ctx, msg)
}
