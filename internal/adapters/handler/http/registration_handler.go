package http

import (
	"net/http"

	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

type RegistrationHandler struct {
	service ports.RegistrationService
	logger  logging.Logger
}

func NewRegistrationHandler(service ports.RegistrationService, logger logging.Logger) *RegistrationHandler {
	return &RegistrationHandler{service: service, logger: logger}
}

type startRegistrationResponse struct {
	Message   string `json:"message"`
	SecretKey string `json:"secret_key"`
}

type completeRegistrationResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// Start godoc
// @Summary      Starts an email confirmed registration
// @Description  Stores a pending registration and mails a 6-digit confirmation key.
// @Tags         registration
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Failure      409
// @Router       /register/start [post]
func (h *RegistrationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	key, err := h.service.Start(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, startRegistrationResponse{
		Message:   "confirmation key sent",
		SecretKey: key,
	})
}

// Complete godoc
// @Summary      Completes a registration
// @Description  Confirms the pending registration and creates the account with a generated username.
// @Tags         registration
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Failure      404
// @Router       /register/complete [post]
func (h *RegistrationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	username, err := h.service.Complete(r.Context(), req.Email, req.SecretKey)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, completeRegistrationResponse{
		Message:  "registration completed",
		Username: username,
	})
}
