package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/dbx"
)

type RegistrationRepository struct {
	db dbx.DBTX
}

func NewRegistrationRepository(db dbx.DBTX) ports.RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, email, password_hash, secret_key, created_at, expires_at, confirmed`

func scanRegistration(row *sql.Row) (*domain.TempRegistration, error) {
	reg := &domain.TempRegistration{}
	err := row.Scan(&reg.ID, &reg.Email, &reg.PasswordHash, &reg.SecretKey, &reg.CreatedAt, &reg.ExpiresAt, &reg.Confirmed)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *RegistrationRepository) FindPending(ctx context.Context, email string) (*domain.TempRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM temp_registrations WHERE email = $1 AND NOT confirmed`
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find pending registration: %w", err)
	}
	return reg, nil
}

// Upsert relies on the partial unique index over pending emails: a conflicting
// row is overwritten only when it is old enough, otherwise nothing is returned.
func (r *RegistrationRepository) Upsert(ctx context.Context, reg *domain.TempRegistration, replaceBefore time.Time) error {
	query := `
		INSERT INTO temp_registrations (email, password_hash, secret_key, created_at, expires_at, confirmed)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (email) WHERE NOT confirmed
		DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			secret_key = EXCLUDED.secret_key,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE temp_registrations.created_at <= $6
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		reg.Email, reg.PasswordHash, reg.SecretKey, reg.CreatedAt, reg.ExpiresAt, replaceBefore,
	).Scan(&reg.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRegistrationInProgress
		}
		return fmt.Errorf("failed to upsert registration: %w", mapConstraintError(err))
	}
	return nil
}

func (r *RegistrationRepository) FindActive(ctx context.Context, email, secretKey string, now time.Time) (*domain.TempRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM temp_registrations
		WHERE email = $1 AND secret_key = $2 AND expires_at > $3
		FOR UPDATE
	`
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, email, secretKey, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE temp_registrations SET confirmed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to confirm registration: %w", err)
	}
	return requireAffected(res, domain.ErrRegistrationNotFound)
}

func (r *RegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM temp_registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return requireAffected(res, domain.ErrRegistrationNotFound)
}

func (r *RegistrationRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM temp_registrations WHERE email = $1`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete registrations by email: %w", err)
	}
	return res.RowsAffected()
}

func (r *RegistrationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM temp_registrations WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired registrations: %w", err)
	}
	return res.RowsAffected()
}
