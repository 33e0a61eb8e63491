package ports

import (
	"context"

	"github.com/taskflow/todo-api/internal/core/domain"
)

// CredentialStore defines user record persistence. Create is the sole
// authority for email uniqueness and must fail with domain.ErrUserExists
// atomically, even under concurrent calls.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindOrCreate returns the user holding user.Email, inserting user when
	// none exists. created reports whether this call performed the insert.
	FindOrCreate(ctx context.Context, user *domain.User) (found *domain.User, created bool, err error)
}
