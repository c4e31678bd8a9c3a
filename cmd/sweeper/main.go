package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/postbox/internal/adapters/email"
	"github.com/vncsmyrnk/postbox/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/postbox/internal/config"
	"github.com/vncsmyrnk/postbox/internal/core/services"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dsn string
	flag.StringVar(&dsn, "d", os.Getenv("DATABASE_URL"), "Database connection string")
	flag.Parse()

	if dsn == "" {
		log.Fatal("a database connection string is required (-d or DATABASE_URL)")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(os.Stdout, slog.LevelInfo)
	defaults := config.Defaults()

	// Only CleanupExpired is used here; mail goes to the log.
	store := postgres.NewStore(db)
	registrationService := services.NewRegistrationService(store,
		services.NewBcryptHasher(bcrypt.DefaultCost),
		services.NewEmailService(email.NewLogSender(logger), defaults.EmailFrom, logger),
		defaults.RegistrationTTL, defaults.RegistrationCooldown, logger)
	cleanupService := services.NewCleanupService(store, registrationService)

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Starting expired row sweep...")

	result, err := cleanupService.SweepExpired(ctx)
	if err != nil {
		log.Fatalf("Error sweeping expired rows: %v", err)
	}

	log.Printf("Sweep completed: %d refresh tokens, %d registrations removed.",
		result.RefreshTokens, result.Registrations)
}
