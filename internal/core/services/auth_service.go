package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

type authService struct {
	store  ports.Store
	tokens ports.TokenService
	hasher ports.PasswordHasher
	logger logging.Logger
	now    func() time.Time
}

func NewAuthService(store ports.Store, tokens ports.TokenService, hasher ports.PasswordHasher, logger logging.Logger) ports.AuthService {
	return &authService{
		store:  store,
		tokens: tokens,
		hasher: hasher,
		logger: logger.With("component", "auth"),
		now:    time.Now,
	}
}

// Authenticate never tells the caller which of the credentials was wrong.
func (s *authService) Authenticate(ctx context.Context, username, password string) (uuid.UUID, error) {
	if username == "" || password == "" {
		return uuid.Nil, domain.ErrAuthentication
	}

	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug(ctx, "login for unknown user", "username", username)
			return uuid.Nil, domain.ErrAuthentication
		}
		return uuid.Nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrAuthentication) {
			s.logger.Debug(ctx, "password mismatch", "user_id", user.ID)
			return uuid.Nil, domain.ErrAuthentication
		}
		return uuid.Nil, fmt.Errorf("failed to compare password: %w", err)
	}

	return user.ID, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	userID, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.issue(ctx, s.store.RefreshTokens(), userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", userID)
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The old token is consumed
// in the same transaction that stores the new one, so a token can be
// exchanged at most once.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	var pair *domain.TokenPair
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		current, err := repos.RefreshTokens().Consume(ctx, refreshToken)
		if err != nil {
			return err
		}

		// Returning an error rolls the delete back; the sweeper removes the row.
		if current.Expired(s.now()) {
			s.logger.Info(ctx, "refresh token expired", "user_id", current.UserID)
			return domain.ErrTokenExpired
		}

		pair, err = s.issue(ctx, repos.RefreshTokens(), current.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh tokens: %w", err)
	}

	return pair, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.store.RefreshTokens().Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *authService) issue(ctx context.Context, repo ports.RefreshTokenRepository, userID uuid.UUID) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.MintAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken := s.tokens.NewRefreshToken(userID)
	if err := repo.Create(ctx, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
	}, nil
}
