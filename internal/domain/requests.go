package domain

// VerifyEmailRequest carries the token from the verification link.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,max=2048"`
}

type RecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RecoveryCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric,len=6"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,numeric,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}
