package http

import (
	"net/http"

	"github.com/vncsmyrnk/postbox/internal/core/ports"
	"github.com/vncsmyrnk/postbox/internal/logging"
)

type EmailHandler struct {
	service ports.EmailService
	logger  logging.Logger
}

func NewEmailHandler(service ports.EmailService, logger logging.Logger) *EmailHandler {
	return &EmailHandler{service: service, logger: logger}
}

type sendEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send godoc
// @Summary      Sends an email
// @Description  Sends a plain text message, or HTML when is_html is set.
// @Tags         email
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Failure      503
// @Router       /email/send [post]
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var err error
	if req.IsHTML {
		err = h.service.SendHTML(r.Context(), req.To, req.Subject, req.Body)
	} else {
		err = h.service.SendText(r.Context(), req.To, req.Subject, req.Body)
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sendEmailResponse{Success: true, Message: "email sent"})
}
