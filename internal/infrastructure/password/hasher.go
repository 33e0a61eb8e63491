// Package password hashes and verifies account passwords with bcrypt and
// enforces the password strength policy.
package password

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/todo-api/internal/api/metrics"
)

const (
	// MinLength is the minimum number of characters in a password.
	MinLength = 8
	// MaxLength is bcrypt's input limit in bytes; longer input would be
	// silently truncated by older bcrypt implementations.
	MaxLength = 72
)

// errNotRun stands in for a result when the runner returned without running fn.
var errNotRun = errors.New("password: job did not run")

// Runner executes fn off the calling goroutine and waits for it.
// *queue.Pool satisfies it.
type Runner interface {
	Submit(ctx context.Context, fn func()) error
}

// Hasher implements ports.PasswordHasher.
type Hasher struct {
	runner Runner
	cost   int
}

// NewHasher returns a Hasher that runs bcrypt on runner. A cost outside
// bcrypt's accepted range falls back to bcrypt.DefaultCost (10).
func NewHasher(runner Runner, cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{runner: runner, cost: cost}
}

// Hash returns a salted bcrypt hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	var (
		out     []byte
		hashErr = errNotRun
	)
	err := h.runner.Submit(ctx, func() {
		start := time.Now()
		out, hashErr = bcrypt.GenerateFromPassword([]byte(password), h.cost)
		metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	})
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if hashErr != nil {
		return "", fmt.Errorf("hash password: %w", hashErr)
	}
	return string(out), nil
}

// Verify reports whether password matches hash. A malformed or empty hash
// never matches.
func (h *Hasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	cmpErr := errNotRun
	err := h.runner.Submit(ctx, func() {
		start := time.Now()
		cmpErr = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	})
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	if errors.Is(cmpErr, errNotRun) {
		return false, fmt.Errorf("verify password: %w", cmpErr)
	}
	// mismatch, malformed hash and unknown version all read as "no match"
	return cmpErr == nil, nil
}

// CheckStrength reports whether password satisfies the policy: MinLength
// characters, at most MaxLength bytes, and at least one uppercase letter,
// lowercase letter, digit and symbol.
func (h *Hasher) CheckStrength(password string) bool {
	return CheckStrength(password)
}

// CheckStrength is the policy behind Hasher.CheckStrength.
func CheckStrength(password string) bool {
	if utf8.RuneCountInString(password) < MinLength || len(password) > MaxLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsSpace(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
