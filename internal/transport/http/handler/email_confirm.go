package handler

import (
	"net/http"

	"github.com/go-account-api/internal/application/verification"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/validate"
	"github.com/go-account-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// EmailConfirmHandler handles the email verification flow for the signed-in account.
type EmailConfirmHandler struct {
	svc verification.Service
}

func NewEmailConfirmHandler(svc verification.Service) *EmailConfirmHandler {
	return &EmailConfirmHandler{svc: svc}
}

func (h *EmailConfirmHandler) Action(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}
	switch chi.URLParam(r, "action") {
	case "request":
		if err := h.svc.SendVerification(r.Context(), claims.Email); err != nil {
			httpError(w, r, err)
			return
		}
		writeMessage(w, "verification email sent")
	case "validate-code":
		var req domain.VerifyEmailRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := validate.Struct(&req); err != nil {
			httpError(w, r, err)
			return
		}
		if err := h.svc.ConfirmVerification(r.Context(), claims.Email, req.Code); err != nil {
			httpError(w, r, err)
			return
		}
		writeMessage(w, "account verified successfully")
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
