package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
)

func TestRefreshTokenRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRefreshTokenRepository(db)
	userID := uuid.New()
	exp := time.Now().Add(time.Hour)
	created := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+refresh_tokens\s*\(token,\s*user_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+created_at`).
		WithArgs("tok", userID, exp).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	rt := &domain.RefreshToken{Token: "tok", UserID: userID, ExpiresAt: exp}
	require.NoError(t, repo.Create(context.Background(), rt))
	assert.Equal(t, created, rt.CreatedAt)
}

func TestRefreshTokenRepository_Consume(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRefreshTokenRepository(db)
	userID := uuid.New()
	exp := time.Now().Add(time.Hour)

	q := `(?s)DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+token,\s*user_id,\s*expires_at,\s*created_at`
	mock.ExpectQuery(q).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at"}).
			AddRow("tok", userID.String(), exp, time.Now()))
	mock.ExpectQuery(q).
		WithArgs("tok").
		WillReturnError(sql.ErrNoRows)

	rt, err := repo.Consume(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, userID, rt.UserID)
	assert.Equal(t, exp, rt.ExpiresAt)

	_, err = repo.Consume(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)
}

func TestRefreshTokenRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRefreshTokenRepository(db)

	mock.ExpectExec(`DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+refresh_tokens`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE\s+FROM\s+refresh_tokens`).
		WillReturnError(errors.New("db down"))

	require.NoError(t, repo.Delete(context.Background(), "tok"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "tok"), domain.ErrRefreshTokenNotFound)
	assert.ErrorContains(t, repo.Delete(context.Background(), "tok"), "db down")
}

func TestRefreshTokenRepository_DeleteExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRefreshTokenRepository(db)
	now := time.Now()

	mock.ExpectExec(`DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+expires_at\s*<=\s*\$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
