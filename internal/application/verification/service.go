package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/mailtmpl"
)

const fieldAccountStatus = "account_status"

type Service interface {
	SendVerification(ctx context.Context, email string) error
	ConfirmVerification(ctx context.Context, email, code string) error
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type otpStore interface {
	Insert(ctx context.Context, o *domain.OtpRecord) error
	FindLatest(ctx context.Context, f domain.OtpFilter) (*domain.OtpRecord, error)
	MarkUsed(ctx context.Context, otpID string) error
}

type tokenGenerator interface {
	VerificationToken(email string) (string, error)
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type service struct {
	accounts accountStore
	otps     otpStore
	tokens   tokenGenerator
	mailer   mailer
	renderer *mailtmpl.Renderer
	now      func() time.Time
}

type ServiceDeps struct {
	AccountRepo accountStore
	OtpRepo     otpStore
	Tokens      tokenGenerator
	Mailer      mailer
	Renderer    *mailtmpl.Renderer
	Now         func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		accounts: deps.AccountRepo,
		otps:     deps.OtpRepo,
		tokens:   deps.Tokens,
		mailer:   deps.Mailer,
		renderer: deps.Renderer,
		now:      now,
	}
}

// SendVerification issues a fresh token for the account and emails the
// verification link. The record is persisted before delivery is attempted.
func (s *service) SendVerification(ctx context.Context, email string) error {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := s.tokens.VerificationToken(email)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	if err := s.otps.Insert(ctx, &domain.OtpRecord{
		Code:    token,
		Email:   email,
		Purpose: domain.PurposeVerification,
		Status:  domain.OtpUnused,
	}); err != nil {
		return err
	}
	msg, err := s.renderer.Verification(acc.Name, token)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	if err := s.mailer.SendEmail(ctx, email, msg.Subject, msg.HTML); err != nil {
		return fmt.Errorf("send verification email: %w: %w", domain.ErrDeliveryFailure, err)
	}
	return nil
}

// ConfirmVerification activates the account and then consumes the token.
// Activation is idempotent, so a failed consume leaves a token the user can
// still redeem instead of a burned token on a PENDING account.
func (s *service) ConfirmVerification(ctx context.Context, email, code string) error {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acc.AccountStatus == domain.AccountActive {
		return fmt.Errorf("account %s: %w", acc.UserID, domain.ErrAlreadyVerified)
	}
	rec, err := s.otps.FindLatest(ctx, domain.OtpFilter{
		Email:   email,
		Purpose: domain.PurposeVerification,
		Code:    code,
	}.WithStatus(domain.OtpUnused))
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("verification code: %w", domain.ErrInvalidCode)
	}
	if err != nil {
		return err
	}
	if rec.Expired(s.now()) {
		return fmt.Errorf("verification code %s: %w", rec.OtpID, domain.ErrCodeExpired)
	}
	if err := s.accounts.Update(ctx, acc.UserID, map[string]interface{}{
		fieldAccountStatus: domain.AccountActive,
	}); err != nil {
		return err
	}
	if err := s.otps.MarkUsed(ctx, rec.OtpID); err != nil {
		// A concurrent confirm consumed it first; from this caller's view the code is gone.
		if errors.Is(err, domain.ErrCodeAlreadyUsed) {
			return fmt.Errorf("verification code %s: %w", rec.OtpID, domain.ErrInvalidCode)
		}
		return err
	}
	return nil
}
