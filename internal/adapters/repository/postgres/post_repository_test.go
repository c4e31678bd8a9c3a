package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
)

var postRowColumns = []string{"id", "message", "user_id", "created_at", "updated_at"}

func TestPostRepository_CreateAndGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)
	id, owner := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+posts\s*\(message,\s*user_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at,\s*updated_at`).
		WithArgs("hello", owner).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))
	mock.ExpectQuery(`(?s)FROM\s+posts\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(id.String(), "hello", owner.String(), now, now))
	mock.ExpectQuery(`(?s)FROM\s+posts\s+WHERE\s+id\s*=\s*\$1`).
		WillReturnError(sql.ErrNoRows)

	post := &domain.Post{Message: "hello", UserID: owner}
	require.NoError(t, repo.Create(context.Background(), post))
	assert.Equal(t, id, post.ID)

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, owner, got.UserID)

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestPostRepository_ListByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)
	owner := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM\s+posts\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(uuid.NewString(), "newer", owner.String(), now, now).
			AddRow(uuid.NewString(), "older", owner.String(), now.Add(-time.Hour), now.Add(-time.Hour)))

	posts, err := repo.ListByUser(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Message)
}

func TestPostRepository_ListByUser_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`FROM\s+posts`).
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	posts, err := repo.ListByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_UpdateAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)
	id := uuid.New()
	now := time.Now()
	ctx := context.Background()

	mock.ExpectQuery(`(?s)UPDATE\s+posts\s+SET\s+message\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1`).
		WithArgs(id, "edited").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(`UPDATE\s+posts`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`DELETE\s+FROM\s+posts\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+posts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	post := &domain.Post{ID: id, Message: "edited"}
	require.NoError(t, repo.Update(ctx, post))
	assert.Equal(t, now, post.UpdatedAt)
	assert.ErrorIs(t, repo.Update(ctx, post), domain.ErrPostNotFound)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), domain.ErrPostNotFound)
}
