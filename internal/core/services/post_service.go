package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
)

type postService struct {
	store ports.Store
}

func NewPostService(store ports.Store) ports.PostService {
	return &postService{store: store}
}

func (s *postService) Create(ctx context.Context, ownerID uuid.UUID, message string) (*domain.Post, error) {
	post := &domain.Post{
		Message: message,
		UserID:  ownerID,
	}
	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *postService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *postService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Post, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	posts, err := s.store.Posts().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Update(ctx context.Context, callerID, id uuid.UUID, message string) (*domain.Post, error) {
	var post *domain.Post
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		current, err := s.ownedPost(ctx, repos, callerID, id)
		if err != nil {
			return err
		}

		current.Message = message
		if err := repos.Posts().Update(ctx, current); err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		post = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := s.ownedPost(ctx, repos, callerID, id); err != nil {
			return err
		}
		if err := repos.Posts().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return nil
	})
}

func (s *postService) ownedPost(ctx context.Context, repos ports.Repositories, callerID, id uuid.UUID) (*domain.Post, error) {
	post, err := repos.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if !post.OwnedBy(callerID) {
		return nil, domain.ErrForbidden
	}
	return post, nil
}
