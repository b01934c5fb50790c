package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-account-api/internal/domain"
)

// fakeAccounts is an in-memory account table keyed by id.
type fakeAccounts struct {
	mu        sync.Mutex
	byID      map[string]*domain.Account
	updateErr error
}

func newFakeAccounts(accs ...domain.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[string]*domain.Account{}}
	for i := range accs {
		a := accs[i]
		f.byID[a.UserID] = &a
	}
	return f
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("account with email %s: %w", email, domain.ErrNotFound)
}

func (f *fakeAccounts) Update(_ context.Context, userID string, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.byID[userID]
	if !ok {
		return fmt.Errorf("account %s: %w", userID, domain.ErrNotFound)
	}
	if v, ok := updates[fieldAccountStatus]; ok {
		a.AccountStatus = v.(domain.AccountStatus)
	}
	return nil
}

func (f *fakeAccounts) status(userID string) domain.AccountStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[userID].AccountStatus
}

// fakeOtps mimics OtpRepo: append-only, newest-first lookup, conditional MarkUsed.
type fakeOtps struct {
	mu      sync.Mutex
	records []*domain.OtpRecord
	ttl     time.Duration
	now     func() time.Time
	markErr error
}

func newFakeOtps(now func() time.Time) *fakeOtps {
	return &fakeOtps{ttl: 10 * time.Minute, now: now}
}

func (f *fakeOtps) Insert(_ context.Context, o *domain.OtpRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.OtpID = fmt.Sprintf("%03d", len(f.records)+1)
	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = f.now().Add(f.ttl)
	}
	cp := *o
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeOtps) FindLatest(_ context.Context, flt domain.OtpFilter) (*domain.OtpRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		if r.Email == flt.Email && r.Purpose == flt.Purpose && r.Code == flt.Code &&
			(flt.Status == nil || r.Status == *flt.Status) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("otp record: %w", domain.ErrNotFound)
}

func (f *fakeOtps) MarkUsed(_ context.Context, otpID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	for _, r := range f.records {
		if r.OtpID == otpID {
			if r.Status != domain.OtpUnused {
				return fmt.Errorf("otp record %s: %w", otpID, domain.ErrCodeAlreadyUsed)
			}
			r.Status = domain.OtpUsed
			return nil
		}
	}
	return fmt.Errorf("otp record %s: %w", otpID, domain.ErrCodeAlreadyUsed)
}

func (f *fakeOtps) byCode(code string) *domain.OtpRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.Code == code {
			cp := *r
			return &cp
		}
	}
	return nil
}

type sentEmail struct {
	To, Subject, HTML string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendEmail(_ context.Context, to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, HTML: htmlBody})
	return nil
}

type seqTokens struct{ n int }

func (s *seqTokens) VerificationToken(string) (string, error) {
	s.n++
	return fmt.Sprintf("tok-%d", s.n), nil
}

var errSMTPDown = errors.New("smtp: connection refused")
