package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/lib/pq"
	handler "github.com/vncsmyrnk/postbox/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/postbox/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/services"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

type TestApp struct {
	Server *httptest.Server
	DB     *sql.DB
	Outbox *Outbox
}

// Outbox records every message handed to the email transport.
type Outbox struct {
	mu   sync.Mutex
	sent []domain.EmailMessage
}

func (o *Outbox) Send(_ context.Context, msg domain.EmailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *Outbox) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbContainer.Terminate(context.Background()) })

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repo.MigrateUp(ctx, db))

	logger := logging.Nop()
	store := repo.NewStore(db)
	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	tokens := services.NewTokenService("test-secret", time.Minute, time.Hour)
	outbox := &Outbox{}
	emailSvc := services.NewEmailService(outbox, "no-reply@postbox.test", logger)

	router := handler.NewHandler(handler.RouterConfig{
		AllowedOrigins: []string{"*"},
		Tokens:         tokens,
		Logger:         logger,
	}, handler.Handlers{
		Auth:         handler.NewAuthHandler(services.NewAuthService(store, tokens, hasher, logger), logger),
		Registration: handler.NewRegistrationHandler(services.NewRegistrationService(store, hasher, emailSvc, 24*time.Hour, time.Minute, logger), logger),
		User:         handler.NewUserHandler(services.NewUserService(store, hasher), logger),
		Post:         handler.NewPostHandler(services.NewPostService(store), logger),
		Email:        handler.NewEmailHandler(emailSvc, logger),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestApp{Server: server, DB: db, Outbox: outbox}
}
