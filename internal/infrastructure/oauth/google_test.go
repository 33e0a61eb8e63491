package oauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskflow/todo-api/internal/core/domain"
)

const testAudience = "client-123.apps.googleusercontent.com"

type staticKeys struct {
	key *rsa.PublicKey
}

func (s staticKeys) KeyfuncCtx(context.Context) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) { return s.key, nil }
}

// slowKeys blocks until the verification context is done.
type slowKeys struct{}

func (slowKeys) KeyfuncCtx(ctx context.Context) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testAudience,
		"sub":            "10769150350006150715113082367",
		"email":          "Alice@Example.com",
		"email_verified": true,
		"name":           "Alice",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "test-key"
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestGoogleVerifier_Valid(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(staticKeys{key: &key.PublicKey}, time.Second)

	id, err := v.Verify(context.Background(), sign(t, key, validClaims()), testAudience)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Email != "alice@example.com" || id.Name != "Alice" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.Provider != domain.ProviderGoogle || id.Subject == "" {
		t.Fatalf("unexpected provider/subject: %+v", id)
	}
}

func TestGoogleVerifier_StringEmailVerifiedAndNameFallback(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(staticKeys{key: &key.PublicKey}, time.Second)

	claims := validClaims()
	claims["email_verified"] = "true"
	claims["iss"] = "accounts.google.com"
	delete(claims, "name")

	id, err := v.Verify(context.Background(), sign(t, key, claims), testAudience)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Name != "alice" {
		t.Fatalf("expected name fallback to email local part, got %q", id.Name)
	}
}

func TestGoogleVerifier_Rejects(t *testing.T) {
	key := newKey(t)
	other := newKey(t)

	mutate := func(f func(jwt.MapClaims)) jwt.MapClaims {
		c := validClaims()
		f(c)
		return c
	}

	cases := map[string]struct {
		token    string
		audience string
	}{
		"wrong audience": {sign(t, key, validClaims()), "someone-else"},
		"empty audience": {sign(t, key, validClaims()), ""},
		"wrong signer":   {sign(t, other, validClaims()), testAudience},
		"expired": {sign(t, key, mutate(func(c jwt.MapClaims) {
			c["exp"] = time.Now().Add(-time.Hour).Unix()
		})), testAudience},
		"no exp": {sign(t, key, mutate(func(c jwt.MapClaims) {
			delete(c, "exp")
		})), testAudience},
		"bad issuer": {sign(t, key, mutate(func(c jwt.MapClaims) {
			c["iss"] = "https://evil.example.com"
		})), testAudience},
		"unverified email": {sign(t, key, mutate(func(c jwt.MapClaims) {
			c["email_verified"] = false
		})), testAudience},
		"missing email": {sign(t, key, mutate(func(c jwt.MapClaims) {
			delete(c, "email")
		})), testAudience},
		"malformed": {"not.a.jwt", testAudience},
		"empty":     {"", testAudience},
	}

	v := NewVerifier(staticKeys{key: &key.PublicKey}, time.Second)
	for name, tc := range cases {
		_, err := v.Verify(context.Background(), tc.token, tc.audience)
		if !errors.Is(err, domain.ErrOAuthVerificationFailed) {
			t.Errorf("%s: expected ErrOAuthVerificationFailed, got %v", name, err)
		}
	}
}

func TestGoogleVerifier_RejectsHMACToken(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(staticKeys{key: &key.PublicKey}, time.Second)

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	signed, _ := hs.SignedString([]byte("guessable"))

	if _, err := v.Verify(context.Background(), signed, testAudience); !errors.Is(err, domain.ErrOAuthVerificationFailed) {
		t.Fatalf("expected ErrOAuthVerificationFailed, got %v", err)
	}
}

func TestGoogleVerifier_Timeout(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(slowKeys{}, 20*time.Millisecond)

	start := time.Now()
	_, err := v.Verify(context.Background(), sign(t, key, validClaims()), testAudience)
	if !errors.Is(err, domain.ErrOAuthVerificationFailed) {
		t.Fatalf("expected ErrOAuthVerificationFailed, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("verification did not respect its timeout")
	}
}
