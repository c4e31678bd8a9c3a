package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/postbox/internal/adapters/email"
	"github.com/vncsmyrnk/postbox/internal/adapters/handler/http"
	"github.com/vncsmyrnk/postbox/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/postbox/internal/config"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/core/services"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal(err)
	}

	store := postgres.NewStore(db)
	hasher := services.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := services.NewTokenService(cfg.JWTAccessSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	emailService := services.NewEmailService(emailSender(cfg, logger), cfg.EmailFrom, logger)

	authService := services.NewAuthService(store, tokens, hasher, logger)
	registrationService := services.NewRegistrationService(store, hasher, emailService,
		cfg.RegistrationTTL, cfg.RegistrationCooldown, logger)
	userService := services.NewUserService(store, hasher)
	postService := services.NewPostService(store)

	handler := http.NewHandler(http.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Tokens:         tokens,
		Logger:         logger,
		AccessLog:      logger.Slog(),
	}, http.Handlers{
		Auth:         http.NewAuthHandler(authService, logger),
		Registration: http.NewRegistrationHandler(registrationService, logger),
		User:         http.NewUserHandler(userService, logger),
		Post:         http.NewPostHandler(postService, logger),
		Email:        http.NewEmailHandler(emailService, logger),
	})
	server := &stdhttp.Server{Addr: cfg.Addr(), Handler: handler}

	go func() {
		logger.Info(ctx, "listening", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

// emailSender falls back to logging messages when no SMTP host is set.
func emailSender(cfg *config.Config, logger logging.Logger) ports.EmailSender {
	if cfg.SMTPHost == "" {
		logger.Warn(context.Background(), "SMTP_HOST not set, emails will only be logged")
		return email.NewLogSender(logger)
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})
}
