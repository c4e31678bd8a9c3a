package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostService interface {
	Create(ctx context.Context, ownerID uuid.UUID, message string) (*domain.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Post, error)
	Update(ctx context.Context, callerID, id uuid.UUID, message string) (*domain.Post, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
}
