package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskflow/todo-api/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	iss, err := NewIssuer("secret")
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	tok, err := iss.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if parts := strings.Split(tok, "."); len(parts) != 3 {
		t.Fatalf("expected three-part token, got %d parts", len(parts))
	}

	sub, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("expected subject user-1, got %q", sub)
	}
}

func TestIssuer_ClaimsCarryThreeDayLifetime(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	iss, _ := NewIssuer("secret", WithClock(fixedClock(now)))

	tok, err := iss.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected sub: %q", claims.Subject)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("unexpected iat: %v", claims.IssuedAt.Time)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 72*time.Hour {
		t.Fatalf("expected exp - iat = 72h, got %v", got)
	}
}

func TestIssuer_Expired(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	past, _ := NewIssuer("secret", WithClock(fixedClock(issuedAt)))
	tok, err := past.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later, _ := NewIssuer("secret", WithClock(fixedClock(issuedAt.Add(TTL+time.Second))))
	if _, err := later.Verify(tok); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	justBefore, _ := NewIssuer("secret", WithClock(fixedClock(issuedAt.Add(TTL-time.Second))))
	if _, err := justBefore.Verify(tok); err != nil {
		t.Fatalf("expected token valid just before expiry, got %v", err)
	}
}

func TestIssuer_TamperedSignature(t *testing.T) {
	iss, _ := NewIssuer("secret")
	tok, _ := iss.Issue("user-1")

	// Flip a character in the middle of the signature segment.
	i := strings.LastIndex(tok, ".") + 5
	b := []byte(tok)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}

	if _, err := iss.Verify(string(b)); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestIssuer_WrongSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a")
	b, _ := NewIssuer("secret-b")
	tok, _ := a.Issue("user-1")

	if _, err := b.Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestIssuer_ExpiredAndWrongSecretIsInvalid(t *testing.T) {
	issuedAt := time.Now().Add(-2 * TTL)
	a, _ := NewIssuer("secret-a", WithClock(fixedClock(issuedAt)))
	tok, _ := a.Issue("user-1")

	b, _ := NewIssuer("secret-b")
	if _, err := b.Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("signature must be checked before expiry, got %v", err)
	}
}

func TestIssuer_RejectsMalformedAndForeignTokens(t *testing.T) {
	iss, _ := NewIssuer("secret")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noneTok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
	noExpTok, _ := noExp.SignedString([]byte("secret"))

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noSubTok, _ := noSub.SignedString([]byte("secret"))

	for name, tok := range map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"two parts": "abc.def",
		"alg none":  noneTok,
		"no exp":    noExpTok,
		"no sub":    noSubTok,
	} {
		if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("%s: expected ErrTokenInvalid, got %v", name, err)
		}
	}
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	if _, err := NewIssuer(""); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestIssuer_EmptySubject(t *testing.T) {
	iss, _ := NewIssuer("secret")
	if _, err := iss.Issue(""); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}
