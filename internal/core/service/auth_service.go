package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/taskflow/todo-api/internal/core/domain"
	"github.com/taskflow/todo-api/internal/core/ports"
)

// decoyPassword is hashed at construction and compared against when a login
// names an unknown account, so both failure paths cost one bcrypt comparison.
const decoyPassword = "decoy-Passw0rd!"

// LoginThrottle abstracts the failed-login counter (Redis).
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService implements registration, login and federated sign-in.
type AuthService struct {
	store    ports.CredentialStore
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	oauth    ports.OAuthVerifier
	audience string
	throttle LoginThrottle
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time

	decoyHash string
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithLoginThrottle enables failed-login throttling.
func WithLoginThrottle(t LoginThrottle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

// NewAuthService wires the account flows. audience is the OAuth client id
// federated assertions must be addressed to. The decoy hash is computed here,
// so an error means the hasher is unusable.
func NewAuthService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	oauth ports.OAuthVerifier,
	audience string,
	log zerolog.Logger,
	opts ...AuthOption,
) (*AuthService, error) {
	s := &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		oauth:    oauth,
		audience: audience,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	decoy, err := hasher.Hash(context.Background(), decoyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth service: decoy hash: %w", err)
	}
	s.decoyHash = decoy
	return s, nil
}

// Register creates a password account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	switch {
	case name == "":
		return "", nil, domain.NewValidationError("name", "is required")
	case email == "":
		return "", nil, domain.NewValidationError("email", "is required")
	case password == "":
		return "", nil, domain.NewValidationError("password", "is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return "", nil, domain.NewValidationError("email", "must be a valid email")
	}
	if !s.hasher.CheckStrength(password) {
		return "", nil, domain.ErrWeakPassword
	}

	// Fast path only; Create below is what guarantees uniqueness.
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return "", nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, fmt.Errorf("register: lookup: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return "", nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	created, err := s.store.Create(ctx, &domain.User{
		Name:       name,
		Email:      email,
		Credential: domain.PasswordCredential{Hash: hash},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.log.Info().Str("email", email).Msg("concurrent registration lost the create race")
			return "", nil, domain.ErrUserExists
		}
		return "", nil, fmt.Errorf("register: create: %w", err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return "", nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return token, created, nil
}

// Login authenticates an email/password pair. Unknown accounts, wrong
// passwords and federated accounts without a password all fail with
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.NewValidationError("", "email and password are required")
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		} else if !allowed {
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, fmt.Errorf("login: lookup: %w", err)
		}
		s.burnDecoy(ctx, password)
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}

	hash, ok := user.PasswordHash()
	if !ok {
		s.burnDecoy(ctx, password)
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}

	match, err := s.hasher.Verify(ctx, password, hash)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if !match {
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	return token, user, nil
}

// GoogleAuth signs in with a Google ID token, creating an external account
// on first use. An existing account with the same email is signed in as is;
// credentials are never merged.
func (s *AuthService) GoogleAuth(ctx context.Context, idToken string) (string, *domain.User, error) {
	if strings.TrimSpace(idToken) == "" {
		return "", nil, domain.NewValidationError("tokenId", "is required")
	}

	identity, err := s.oauth.Verify(ctx, idToken, s.audience)
	if err != nil {
		s.log.Warn().Err(err).Msg("google assertion rejected")
		if errors.Is(err, domain.ErrOAuthVerificationFailed) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %v", domain.ErrOAuthVerificationFailed, err)
	}

	now := s.now().UTC()
	user, created, err := s.store.FindOrCreate(ctx, &domain.User{
		Name:       identity.Name,
		Email:      normalizeEmail(identity.Email),
		Credential: domain.ExternalCredential{Provider: identity.Provider},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return "", nil, fmt.Errorf("google auth: %w", err)
	}
	if created {
		s.log.Info().Str("user_id", user.ID).Str("provider", identity.Provider).Msg("federated user created")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("google auth: %w", err)
	}
	return token, user, nil
}

// GetUser resolves an authenticated subject to its user record.
func (s *AuthService) GetUser(ctx context.Context, subjectID string) (*domain.User, error) {
	if subjectID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.store.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

// burnDecoy spends one comparison on a throwaway hash. Its result is
// irrelevant.
func (s *AuthService) burnDecoy(ctx context.Context, password string) {
	_, _ = s.hasher.Verify(ctx, password, s.decoyHash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
