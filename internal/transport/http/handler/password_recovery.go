package handler

import (
	"net/http"

	"github.com/go-account-api/internal/application/recovery"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/validate"
)

// PasswordRecoveryHandler handles the public password recovery flow.
type PasswordRecoveryHandler struct {
	svc recovery.Service
}

func NewPasswordRecoveryHandler(svc recovery.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

func (h *PasswordRecoveryHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.RecoveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.SendRecoveryCode(r.Context(), req.Email); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, "otp sent successfully")
}

func (h *PasswordRecoveryHandler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	var req domain.RecoveryCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.ConfirmRecoveryCode(r.Context(), req.Email, req.Code); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, "otp verified successfully")
}

func (h *PasswordRecoveryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, "password changed successfully")
}
