package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("user not found")
	ErrAlreadyVerified = errors.New("account already verified")
	ErrInvalidCode     = errors.New("invalid otp code")
	ErrCodeAlreadyUsed = errors.New("otp code already used")
	ErrCodeExpired     = errors.New("otp code expired")
	ErrDeliveryFailure = errors.New("email delivery failed")
	ErrStorageFailure  = errors.New("storage failure")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)
