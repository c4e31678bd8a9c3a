package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vncsmyrnk/postbox/internal/core/ports"
)

type cleanupService struct {
	store         ports.Store
	registrations ports.RegistrationService
	now           func() time.Time
}

func NewCleanupService(store ports.Store, registrations ports.RegistrationService) ports.CleanupService {
	return &cleanupService{
		store:         store,
		registrations: registrations,
		now:           time.Now,
	}
}

// SweepExpired removes expired refresh tokens and temporary registrations.
// Both tables are swept concurrently; the first error is returned.
func (s *cleanupService) SweepExpired(ctx context.Context) (ports.SweepResult, error) {
	now := s.now()
	var result ports.SweepResult

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		n, err := s.store.RefreshTokens().DeleteExpired(ctx, now)
		if err != nil {
			errChan <- fmt.Errorf("failed to sweep refresh tokens: %w", err)
			return
		}
		result.RefreshTokens = n
	}()
	go func() {
		defer wg.Done()
		n, err := s.registrations.CleanupExpired(ctx)
		if err != nil {
			errChan <- fmt.Errorf("failed to sweep registrations: %w", err)
			return
		}
		result.Registrations = n
	}()

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return result, err
		}
	}

	return result, nil
}
