package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

var (
	errMissingBearer  = errors.New("missing bearer token")
	errInvalidPayload = errors.New("invalid request body")
)

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order; the first errors.Is match wins. Token failures share one
// message.
var errorMappings = []errorMapping{
	{errInvalidPayload, http.StatusBadRequest, "validation_failed", "invalid request body"},
	{domain.ErrInvalidID, http.StatusBadRequest, "validation_failed", "invalid id"},
	{domain.ErrRegistrationConfirmed, http.StatusBadRequest, "validation_failed", "registration already confirmed"},
	{domain.ErrEmptyAddress, http.StatusBadRequest, "invalid_email_address", "email address is required"},
	{domain.ErrMalformedAddress, http.StatusBadRequest, "invalid_email_address", "email address is malformed"},
	{domain.ErrEmptySubject, http.StatusBadRequest, "empty_email_subject", "email subject is required"},
	{domain.ErrEmptyBody, http.StatusBadRequest, "empty_email_body", "email body is required"},

	{errMissingBearer, http.StatusUnauthorized, "unauthorized", "authentication required"},
	{domain.ErrAuthentication, http.StatusUnauthorized, "authentication_failed", "invalid credentials"},
	{domain.ErrTokenExpired, http.StatusUnauthorized, "token_expired", "authentication required"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "invalid_token", "authentication required"},
	{domain.ErrRefreshTokenNotFound, http.StatusUnauthorized, "refresh_token_not_found", "authentication required"},

	{domain.ErrForbidden, http.StatusForbidden, "forbidden", "operation not allowed"},

	{domain.ErrUserNotFound, http.StatusNotFound, "not_found", "user not found"},
	{domain.ErrPostNotFound, http.StatusNotFound, "not_found", "post not found"},
	{domain.ErrRegistrationNotFound, http.StatusNotFound, "not_found", "registration not found"},

	{domain.ErrEmailAlreadyTaken, http.StatusConflict, "email_already_taken", "email already taken"},
	{domain.ErrUsernameTaken, http.StatusConflict, "username_taken", "username already taken"},
	{domain.ErrRegistrationInProgress, http.StatusConflict, "already_in_progress", "registration already in progress, try again later"},

	{domain.ErrEmailTransport, http.StatusServiceUnavailable, "email_service_unavailable", "email service unavailable"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps err to its status and category. Unmapped errors are logged
// and reported as an opaque internal error.
func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: "validation failed",
			Details: validationDetails(verrs),
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
			}
			writeJSON(w, m.status, errorResponse{Error: m.code, Message: m.message})
			return
		}
	}

	logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	})
}

func validationDetails(errs validation.Errors) []string {
	details := make([]string, 0, len(errs))
	for field, err := range errs {
		details = append(details, field+": "+err.Error())
	}
	sort.Strings(details)
	return details
}
