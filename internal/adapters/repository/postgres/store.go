package postgres

import (
	"context"
	"database/sql"

	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/dbx"
)

// Store vends repositories bound either to the pool or to a transaction.
type Store struct {
	db *sql.DB
	repositories
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repositories: repositories{db: db}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, repositories{db: tx})
	})
}

type repositories struct {
	db dbx.DBTX
}

func (r repositories) Users() ports.UserRepository {
	return NewUserRepository(r.db)
}

func (r repositories) RefreshTokens() ports.RefreshTokenRepository {
	return NewRefreshTokenRepository(r.db)
}

func (r repositories) Registrations() ports.RegistrationRepository {
	return NewRegistrationRepository(r.db)
}

func (r repositories) Posts() ports.PostRepository {
	return NewPostRepository(r.db)
}
