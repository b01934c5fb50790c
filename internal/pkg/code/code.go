// Package code produces the one-time codes handed out by the verification and
// recovery flows.
package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	digits       = "0123456789"
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	fallbackTokenLength = 32
)

// TokenSigner signs a tamper-evident token embedding the given email.
type TokenSigner interface {
	SignVerification(email string) (string, error)
}

// Generator issues verification tokens and short random codes.
type Generator struct {
	signer TokenSigner
}

// NewGenerator returns a Generator. A nil signer makes VerificationToken fall
// back to an unsigned random token.
func NewGenerator(signer TokenSigner) *Generator {
	return &Generator{signer: signer}
}

// VerificationToken returns an opaque token for the email verification link.
func (g *Generator) VerificationToken(email string) (string, error) {
	if g.signer == nil {
		return Alphanumeric(fallbackTokenLength)
	}
	tok, err := g.signer.SignVerification(email)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return tok, nil
}

// Numeric returns a code of n uniformly random decimal digits. Codes are not
// globally unique.
func (g *Generator) Numeric(n int) (string, error) {
	return Numeric(n)
}

// Numeric returns n uniformly random decimal digits.
func Numeric(n int) (string, error) {
	return fromAlphabet(digits, n)
}

// Alphanumeric returns n uniformly random characters from [a-zA-Z0-9].
func Alphanumeric(n int) (string, error) {
	return fromAlphabet(alphanumeric, n)
}

func fromAlphabet(alphabet string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}
	limit := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
