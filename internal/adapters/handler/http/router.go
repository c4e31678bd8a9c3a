// Package http exposes the services over a JSON REST API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

type Handlers struct {
	Auth         *AuthHandler
	Registration *RegistrationHandler
	User         *UserHandler
	Post         *PostHandler
	Email        *EmailHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	Tokens         ports.TokenService
	Logger         logging.Logger
	// AccessLog receives one line per request; nil means slog.Default().
	AccessLog *slog.Logger
}

func NewHandler(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLogger(cfg.AccessLog))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireAuth := RequireAuth(cfg.Tokens, cfg.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			writeMessage(w, http.StatusOK, "pong")
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
		})

		r.Route("/register", func(r chi.Router) {
			r.Post("/start", h.Registration.Start)
			r.Post("/complete", h.Registration.Complete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.User.Create)
			r.Get("/", h.User.List)
			r.Get("/{id}", h.User.Get)
			r.Get("/{id}/posts", h.Post.ListByUser)
			r.With(requireAuth).Put("/{id}", h.User.Update)
			r.With(requireAuth).Delete("/{id}", h.User.Delete)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/{id}", h.Post.Get)
			r.With(requireAuth).Post("/", h.Post.Create)
			r.With(requireAuth).Put("/{id}", h.Post.Update)
			r.With(requireAuth).Delete("/{id}", h.Post.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", h.User.GetMe)
			r.Post("/email/send", h.Email.Send)
		})
	})

	return r
}

func accessLogger(l *slog.Logger) func(http.Handler) http.Handler {
	if l == nil {
		l = slog.Default()
	}
	return middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(l.Handler(), slog.LevelInfo),
		NoColor: true,
	})
}
