// Package config builds the runtime configuration from defaults, an optional
// .env file, environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerHost string
	ServerPort string

	DatabaseURL string

	JWTAccessSecret string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RegistrationTTL      time.Duration
	RegistrationCooldown time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	LogLevel           slog.Level
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_ACCESS_SECRET is required")
)

func Defaults() *Config {
	return &Config{
		ServerHost:           "127.0.0.1",
		ServerPort:           "8080",
		AccessTokenTTL:       60 * time.Second,
		RefreshTokenTTL:      3600 * time.Second,
		RegistrationTTL:      24 * time.Hour,
		RegistrationCooldown: time.Minute,
		SMTPPort:             587,
		EmailFrom:            "no-reply@postbox.local",
		CORSAllowedOrigins:   []string{"*"},
		ShutdownTimeout:      30 * time.Second,
		LogLevel:             slog.LevelInfo,
	}
}

// Load reads .env (when present), overlays the environment and finally the
// flags found in args. The result is validated before being returned.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.applyFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.JWTAccessSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.RegistrationTTL <= 0 {
		return fmt.Errorf("REGISTRATION_TTL must be positive")
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	seconds := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = time.Duration(n) * time.Second
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("SERVER_HOST", &c.ServerHost)
	str("SERVER_PORT", &c.ServerPort)
	str("DATABASE_URL", &c.DatabaseURL)
	str("JWT_ACCESS_SECRET", &c.JWTAccessSecret)
	str("SMTP_HOST", &c.SMTPHost)
	str("SMTP_USER", &c.SMTPUser)
	str("SMTP_PASSWORD", &c.SMTPPassword)
	str("EMAIL_FROM", &c.EmailFrom)

	if err := seconds("JWT_ACCESS_EXPIRES", &c.AccessTokenTTL); err != nil {
		return err
	}
	if err := seconds("JWT_REFRESH_EXPIRES", &c.RefreshTokenTTL); err != nil {
		return err
	}
	if err := duration("REGISTRATION_TTL", &c.RegistrationTTL); err != nil {
		return err
	}
	if err := duration("REGISTRATION_COOLDOWN", &c.RegistrationCooldown); err != nil {
		return err
	}
	if err := duration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout); err != nil {
		return err
	}

	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		c.SMTPPort = port
	}

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, p := range strings.Split(v, ",") {
			if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSAllowedOrigins = origins
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	return nil
}

func (c *Config) applyFlags(args []string) error {
	fs := flag.NewFlagSet("postbox", flag.ContinueOnError)
	addr := fs.String("a", "", "listen address host:port")
	fs.StringVar(&c.DatabaseURL, "d", c.DatabaseURL, "database connection string")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *addr != "" {
		host, port, err := net.SplitHostPort(*addr)
		if err != nil {
			return fmt.Errorf("invalid listen address %q: %w", *addr, err)
		}
		c.ServerHost, c.ServerPort = host, port
	}
	return nil
}
