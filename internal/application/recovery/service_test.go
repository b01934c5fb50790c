package recovery

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-account-api/internal/application/verification"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/code"
	"github.com/go-account-api/internal/pkg/mailtmpl"
	"github.com/go-account-api/internal/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc      Service
	accounts *fakeAccounts
	otps     *fakeOtps
	mailer   *fakeMailer
	hasher   *password.Hasher
	clock    *time.Time
}

func newFixture(t *testing.T, codes codeGenerator) *fixture {
	t.Helper()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		clock:  &clock,
		mailer: &fakeMailer{},
		hasher: password.NewHasher(bcrypt.MinCost),
		accounts: newFakeAccounts(domain.Account{
			UserID: "u1", Email: "a@b.com", Name: "Alice", PasswordHash: "old",
		}),
	}
	now := func() time.Time { return *f.clock }
	f.otps = newFakeOtps(now)
	f.svc = NewService(ServiceDeps{
		AccountRepo: f.accounts,
		OtpRepo:     f.otps,
		Codes:       codes,
		Hasher:      f.hasher,
		Mailer:      f.mailer,
		Renderer:    mailtmpl.NewRenderer("Ring", "https://app.example.com"),
		Now:         now,
	})
	return f
}

func TestSendRecoveryCode_EmailsSixDigits(t *testing.T) {
	f := newFixture(t, code.NewGenerator(nil))
	require.NoError(t, f.svc.SendRecoveryCode(context.Background(), "a@b.com"))

	require.Len(t, f.otps.records, 1)
	rec := f.otps.records[0]
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), rec.Code)
	assert.Equal(t, domain.OtpUnused, rec.Status)
	assert.Equal(t, domain.PurposeRecovery, rec.Purpose)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "Your Ring Account Recovery Code", f.mailer.sent[0].Subject)
	assert.Contains(t, f.mailer.sent[0].HTML, "<b>"+rec.Code+"</b>")
}

func TestSendRecoveryCode_UnknownEmail_ReturnsNotFound(t *testing.T) {
	f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
	assert.ErrorIs(t, f.svc.SendRecoveryCode(context.Background(), "nobody@b.com"), domain.ErrNotFound)
	assert.Empty(t, f.otps.records)
}

func TestSendRecoveryCode_DeliveryFailure_KeepsRecord(t *testing.T) {
	f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
	f.mailer.err = errSMTPDown

	err := f.svc.SendRecoveryCode(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, domain.ErrDeliveryFailure)
	assert.NotNil(t, f.otps.byCode("123456"))
}

func TestConfirmRecoveryCode_CheckOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown code", func(t *testing.T) {
		f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
		require.NoError(t, f.svc.SendRecoveryCode(ctx, "a@b.com"))
		assert.ErrorIs(t, f.svc.ConfirmRecoveryCode(ctx, "a@b.com", "999999"), domain.ErrInvalidCode)
	})

	t.Run("used code reports used before expiry", func(t *testing.T) {
		f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
		require.NoError(t, f.svc.SendRecoveryCode(ctx, "a@b.com"))
		require.NoError(t, f.svc.ConfirmRecoveryCode(ctx, "a@b.com", "123456"))
		*f.clock = f.clock.Add(time.Hour)
		assert.ErrorIs(t, f.svc.ConfirmRecoveryCode(ctx, "a@b.com", "123456"), domain.ErrCodeAlreadyUsed)
	})

	t.Run("expired", func(t *testing.T) {
		f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
		require.NoError(t, f.svc.SendRecoveryCode(ctx, "a@b.com"))
		*f.clock = f.clock.Add(10 * time.Minute)
		assert.ErrorIs(t, f.svc.ConfirmRecoveryCode(ctx, "a@b.com", "123456"), domain.ErrCodeExpired)
		assert.Equal(t, domain.OtpUnused, f.otps.byCode("123456").Status)
	})
}

func TestConfirmRecoveryCode_LeavesAccountUntouched(t *testing.T) {
	f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
	ctx := context.Background()
	require.NoError(t, f.svc.SendRecoveryCode(ctx, "a@b.com"))
	require.NoError(t, f.svc.ConfirmRecoveryCode(ctx, "a@b.com", "123456"))
	assert.Equal(t, "old", f.accounts.passwordHash("u1"))
}

func TestConfirmRecoveryCode_ConcurrentCallersConsumeOnce(t *testing.T) {
	f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
	ctx := context.Background()
	require.NoError(t, f.svc.SendRecoveryCode(ctx, "a@b.com"))

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.ConfirmRecoveryCode(ctx, "a@b.com", "123456")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrCodeAlreadyUsed)
	}
	assert.Equal(t, 1, wins)
}

func TestResetPassword_RequiresConfirmedCode(t *testing.T) {
	f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
	ctx := context.Background()
	require.NoError(t, f.svc.SendRecoveryCode(ctx, "a@b.com"))

	err := f.svc.ResetPassword(ctx, "a@b.com", "123456", "n3w-secret")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	assert.Equal(t, "old", f.accounts.passwordHash("u1"))
}

func TestResetPassword_FullFlow_AndCodeReuse(t *testing.T) {
	f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
	ctx := context.Background()
	require.NoError(t, f.svc.SendRecoveryCode(ctx, "a@b.com"))
	require.NoError(t, f.svc.ConfirmRecoveryCode(ctx, "a@b.com", "123456"))

	require.NoError(t, f.svc.ResetPassword(ctx, "a@b.com", "123456", "n3w-secret"))
	assert.True(t, f.hasher.Compare(f.accounts.passwordHash("u1"), "n3w-secret"))

	// The USED record still authorizes a second reset.
	require.NoError(t, f.svc.ResetPassword(ctx, "a@b.com", "123456", "another"))
	assert.True(t, f.hasher.Compare(f.accounts.passwordHash("u1"), "another"))
}

func TestResetPassword_AccountGone_ReturnsNotFound(t *testing.T) {
	f := newFixture(t, &fixedCodes{codes: []string{"123456"}})
	ctx := context.Background()
	require.NoError(t, f.otps.Insert(ctx, &domain.OtpRecord{
		Email: "gone@b.com", Code: "123456", Purpose: domain.PurposeRecovery, Status: domain.OtpUsed,
	}))

	err := f.svc.ResetPassword(ctx, "gone@b.com", "123456", "n3w-secret")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecovery_ConsumedVerificationTokenIsRejected(t *testing.T) {
	f := newFixture(t, &fixedCodes{})
	ctx := context.Background()
	verify := verification.NewService(verification.ServiceDeps{
		AccountRepo: f.accounts,
		OtpRepo:     f.otps,
		Tokens:      code.NewGenerator(nil),
		Mailer:      f.mailer,
		Renderer:    mailtmpl.NewRenderer("Ring", "https://app.example.com"),
		Now:         func() time.Time { return *f.clock },
	})
	require.NoError(t, verify.SendVerification(ctx, "a@b.com"))
	require.Len(t, f.otps.records, 1)
	token := f.otps.records[0].Code
	require.NoError(t, verify.ConfirmVerification(ctx, "a@b.com", token))
	require.Equal(t, domain.OtpUsed, f.otps.byCode(token).Status)

	*f.clock = f.clock.AddDate(1, 0, 0)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "a@b.com", token, "attacker-pw"), domain.ErrInvalidCode)
	assert.ErrorIs(t, f.svc.ConfirmRecoveryCode(ctx, "a@b.com", token), domain.ErrInvalidCode)
	assert.Equal(t, "old", f.accounts.passwordHash("u1"))
}
