package ports

import (
	"context"

	"github.com/taskflow/todo-api/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks. Every lookup is
// scoped by owner; a task held by another user reads as domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	FindByID(ctx context.Context, userID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}
