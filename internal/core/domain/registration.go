package domain

import (
	"time"

	"github.com/google/uuid"
)

// TempRegistration is a pending signup waiting for its secret key to be
// confirmed. At most one unconfirmed row exists per email.
type TempRegistration struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	SecretKey    string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	Confirmed    bool
}

func (r *TempRegistration) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
