package postgres

import (
	"errors"

	"github.com/lib/pq"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
)

const uniqueViolation = pq.ErrorCode("23505")

// constraintErrors maps unique constraints to the domain conflict they signal.
var constraintErrors = map[string]error{
	"users_username_key":                   domain.ErrUsernameTaken,
	"users_email_key":                      domain.ErrEmailAlreadyTaken,
	"temp_registrations_pending_email_key": domain.ErrRegistrationInProgress,
}

// mapConstraintError translates known unique violations; other errors are
// returned unchanged.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
		return mapped
	}
	return err
}
