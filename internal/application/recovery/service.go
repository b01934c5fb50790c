package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/mailtmpl"
)

const (
	fieldPasswordHash = "password_hash"

	codeLength = 6
)

type Service interface {
	SendRecoveryCode(ctx context.Context, email string) error
	ConfirmRecoveryCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
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

type codeGenerator interface {
	Numeric(n int) (string, error)
}

type passwordHasher interface {
	Hash(plain string) (string, error)
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type service struct {
	accounts accountStore
	otps     otpStore
	codes    codeGenerator
	hasher   passwordHasher
	mailer   mailer
	renderer *mailtmpl.Renderer
	now      func() time.Time
}

type ServiceDeps struct {
	AccountRepo accountStore
	OtpRepo     otpStore
	Codes       codeGenerator
	Hasher      passwordHasher
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
		codes:    deps.Codes,
		hasher:   deps.Hasher,
		mailer:   deps.Mailer,
		renderer: deps.Renderer,
		now:      now,
	}
}

func (s *service) SendRecoveryCode(ctx context.Context, email string) error {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := s.codes.Numeric(codeLength)
	if err != nil {
		return fmt.Errorf("generate recovery code: %w", err)
	}
	if err := s.otps.Insert(ctx, &domain.OtpRecord{
		Code:    code,
		Email:   email,
		Purpose: domain.PurposeRecovery,
		Status:  domain.OtpUnused,
	}); err != nil {
		return err
	}
	msg, err := s.renderer.Recovery(acc.Name, code)
	if err != nil {
		return fmt.Errorf("render recovery email: %w", err)
	}
	if err := s.mailer.SendEmail(ctx, email, msg.Subject, msg.HTML); err != nil {
		return fmt.Errorf("send recovery email: %w: %w", domain.ErrDeliveryFailure, err)
	}
	return nil
}

// ConfirmRecoveryCode consumes a code. Only one caller can win the USED
// transition for a given record.
func (s *service) ConfirmRecoveryCode(ctx context.Context, email, code string) error {
	f := domain.OtpFilter{Email: email, Purpose: domain.PurposeRecovery, Code: code}
	if _, err := s.otps.FindLatest(ctx, f); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("recovery code: %w", domain.ErrInvalidCode)
		}
		return err
	}
	rec, err := s.otps.FindLatest(ctx, f.WithStatus(domain.OtpUnused))
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("recovery code: %w", domain.ErrCodeAlreadyUsed)
	}
	if err != nil {
		return err
	}
	if rec.Expired(s.now()) {
		return fmt.Errorf("recovery code %s: %w", rec.OtpID, domain.ErrCodeExpired)
	}
	return s.otps.MarkUsed(ctx, rec.OtpID)
}

// ResetPassword replaces the credential once a recovery code has been
// confirmed. The consumed record stays USED, so the same code can authorize a
// later reset. Codes issued for other flows never qualify.
func (s *service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	f := domain.OtpFilter{Email: email, Purpose: domain.PurposeRecovery, Code: code}
	_, err := s.otps.FindLatest(ctx, f.WithStatus(domain.OtpUsed))
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("recovery code: %w", domain.ErrInvalidCode)
	}
	if err != nil {
		return err
	}
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.accounts.Update(ctx, acc.UserID, map[string]interface{}{
		fieldPasswordHash: hash,
	})
}
