package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-account-api/internal/domain"
)

// errorStatus maps a domain error to its HTTP status and client-facing message.
// Infrastructure detail never reaches the client.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusBadRequest, domain.ErrAlreadyVerified.Error()
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest, domain.ErrInvalidCode.Error()
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return http.StatusBadRequest, domain.ErrCodeAlreadyUsed.Error()
	case errors.Is(err, domain.ErrCodeExpired):
		return http.StatusBadRequest, domain.ErrCodeExpired.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrDeliveryFailure):
		return http.StatusBadGateway, domain.ErrDeliveryFailure.Error()
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusInternalServerError, domain.ErrStorageFailure.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// httpError writes err as an error envelope. 5xx causes are logged in full.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeError(w, status, msg)
}
