package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
)

type RegistrationRepository interface {
	// FindPending returns the unconfirmed registration for email.
	FindPending(ctx context.Context, email string) (*domain.TempRegistration, error)
	// Upsert stores reg as the pending registration for its email. An existing
	// pending row is replaced only if it was created at or before
	// replaceBefore; otherwise domain.ErrRegistrationInProgress is returned.
	Upsert(ctx context.Context, reg *domain.TempRegistration, replaceBefore time.Time) error
	FindActive(ctx context.Context, email, secretKey string, now time.Time) (*domain.TempRegistration, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByEmail(ctx context.Context, email string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type RegistrationService interface {
	// Start returns the secret key that was mailed to email.
	Start(ctx context.Context, email, password string) (string, error)
	// Complete returns the generated username of the new account.
	Complete(ctx context.Context, email, secretKey string) (string, error)
	CleanupExpired(ctx context.Context) (int64, error)
}
