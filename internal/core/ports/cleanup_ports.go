package ports

import "context"

type SweepResult struct {
	RefreshTokens int64
	Registrations int64
}

type CleanupService interface {
	SweepExpired(ctx context.Context) (SweepResult, error)
}
