package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth validates the bearer access token and stores its claims in the
// request context.
func RequireAuth(tokens ports.TokenService, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, r, logger, errMissingBearer)
				return
			}

			claims, err := tokens.ValidateAccessToken(raw)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

// callerID is only meaningful behind RequireAuth.
func callerID(r *http.Request) (uuid.UUID, error) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return uuid.Nil, errMissingBearer
	}
	return claims.Subject, nil
}
