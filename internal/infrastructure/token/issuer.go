// Package token issues and verifies the HS256 session tokens handed to
// clients after a successful login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskflow/todo-api/internal/core/domain"
)

// TTL is the fixed lifetime of a session token. There is no refresh.
const TTL = 3 * 24 * time.Hour

// ErrEmptySecret is returned by NewIssuer when no signing secret is configured.
var ErrEmptySecret = errors.New("token: signing secret is empty")

// Issuer implements ports.TokenIssuer. It is safe for concurrent use; the
// secret is fixed at construction.
type Issuer struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer returns an Issuer signing with secret.
func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	i := &Issuer{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	return i, nil
}

// Issue signs a token for userID with iat = now and exp = now + TTL.
func (i *Issuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("token: empty subject")
	}
	now := i.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, then the expiry, and returns the subject.
// Signature and structural failures yield domain.ErrTokenInvalid; a correctly
// signed token past its exp yields domain.ErrTokenExpired.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := i.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		// The parser verifies the signature before validating claims, so an
		// expiry error implies the signature was good.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}
