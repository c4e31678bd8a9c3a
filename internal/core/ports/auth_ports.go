package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	// Consume deletes the token and returns the row it held.
	Consume(ctx context.Context, token string) (*domain.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenService interface {
	MintAccessToken(userID uuid.UUID) (string, error)
	ValidateAccessToken(token string) (*domain.Claims, error)
	NewRefreshToken(userID uuid.UUID) domain.RefreshToken
}

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (uuid.UUID, error)
	Login(ctx context.Context, username, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}
