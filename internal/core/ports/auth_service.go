package ports

import (
	"context"

	"github.com/taskflow/todo-api/internal/core/domain"
)

// AuthService exposes the account flows. Each flow that authenticates returns
// a freshly issued session token together with the user.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	GoogleAuth(ctx context.Context, idToken string) (string, *domain.User, error)
	GetUser(ctx context.Context, subjectID string) (*domain.User, error)
}

// PasswordHasher hashes and checks passwords. Hash and Verify are CPU-bound
// and honour ctx while waiting for a worker.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
	CheckStrength(password string) bool
}

// TokenIssuer creates and checks session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	// Verify returns the subject id, domain.ErrTokenInvalid or
	// domain.ErrTokenExpired.
	Verify(token string) (string, error)
}

// OAuthVerifier validates an identity assertion from a third-party provider.
// Every failure matches domain.ErrOAuthVerificationFailed.
type OAuthVerifier interface {
	Verify(ctx context.Context, idToken, audience string) (*domain.ExternalIdentity, error)
}
