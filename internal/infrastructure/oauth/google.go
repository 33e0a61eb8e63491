// Package oauth verifies identity assertions issued by Google Sign-In.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/taskflow/todo-api/internal/core/domain"
)

const (
	// GoogleCertsURL publishes the JWKS used to sign Google ID tokens.
	GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

	defaultTimeout = 5 * time.Second
	clockSkew      = 30 * time.Second
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// KeySource resolves the verification key for a token. keyfunc.Keyfunc
// satisfies it.
type KeySource interface {
	KeyfuncCtx(ctx context.Context) jwt.Keyfunc
}

// Config captures the settings for a GoogleVerifier.
type Config struct {
	CertsURL string
	Timeout  time.Duration
}

// GoogleVerifier implements ports.OAuthVerifier for Google ID tokens.
type GoogleVerifier struct {
	keys    KeySource
	timeout time.Duration
	now     func() time.Time
}

// NewGoogleVerifier fetches Google's signing keys and keeps them refreshed in
// the background until ctx is cancelled.
func NewGoogleVerifier(ctx context.Context, cfg Config) (*GoogleVerifier, error) {
	url := cfg.CertsURL
	if url == "" {
		url = GoogleCertsURL
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("load google jwks: %w", err)
	}
	return NewVerifier(k, cfg.Timeout), nil
}

// NewVerifier builds a GoogleVerifier over an arbitrary key source.
// A non-positive timeout uses the 5s default.
func NewVerifier(keys KeySource, timeout time.Duration) *GoogleVerifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GoogleVerifier{keys: keys, timeout: timeout, now: time.Now}
}

type googleClaims struct {
	jwt.RegisteredClaims
	Email         string       `json:"email"`
	EmailVerified flexibleBool `json:"email_verified"`
	Name          string       `json:"name"`
}

// flexibleBool accepts both JSON booleans and the "true"/"false" strings
// older Google tokens carry.
type flexibleBool bool

func (b *flexibleBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexibleBool(t)
	case string:
		*b = flexibleBool(strings.EqualFold(t, "true"))
	default:
		*b = false
	}
	return nil
}

// Verify validates idToken and returns the verified identity. Any failure,
// including a timeout while resolving keys, wraps
// domain.ErrOAuthVerificationFailed.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken, audience string) (*domain.ExternalIdentity, error) {
	if audience == "" {
		return nil, fail(errors.New("no audience configured"))
	}
	if idToken == "" {
		return nil, fail(errors.New("empty id token"))
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	type result struct {
		claims *googleClaims
		err    error
	}
	done := make(chan result, 1)
	go func() {
		claims := &googleClaims{}
		_, err := jwt.ParseWithClaims(idToken, claims, v.keys.KeyfuncCtx(ctx),
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
			jwt.WithTimeFunc(v.now),
		)
		done <- result{claims: claims, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fail(ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fail(res.err)
	}

	claims := res.claims
	if !validIssuer(claims.Issuer) {
		return nil, fail(fmt.Errorf("unexpected issuer %q", claims.Issuer))
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, fail(errors.New("token carries no email"))
	}
	if !bool(claims.EmailVerified) {
		return nil, fail(errors.New("email not verified by provider"))
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = email[:strings.IndexByte(email+"@", '@')]
	}

	return &domain.ExternalIdentity{
		Provider: domain.ProviderGoogle,
		Subject:  claims.Subject,
		Email:    email,
		Name:     name,
	}, nil
}

func validIssuer(iss string) bool {
	for _, want := range googleIssuers {
		if iss == want {
			return true
		}
	}
	return false
}

func fail(cause error) error {
	return fmt.Errorf("%w: %v", domain.ErrOAuthVerificationFailed, cause)
}
