package ports

import "context"

// Repositories groups the repositories bound to one database handle, either
// the pool or an open transaction.
type Repositories interface {
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
	Registrations() RegistrationRepository
	Posts() PostRepository
}

// Store hands out repositories and runs units of work atomically. fn sees
// repositories bound to the transaction; a non-nil error rolls it back.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
