package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
)

type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

type UpdateUserInput struct {
	Username string
	Password string
}

type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, callerID, id uuid.UUID, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
}
