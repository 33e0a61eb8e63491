package ports

import (
	"context"
	"time"

	"github.com/taskflow/todo-api/internal/core/domain"
)

// TaskInput carries the writable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	Completed   bool
}

// TaskService defines the per-user task use cases.
type TaskService interface {
	Create(ctx context.Context, userID string, in TaskInput) (*domain.Task, error)
	List(ctx context.Context, userID string) ([]*domain.Task, error)
	Update(ctx context.Context, userID, taskID string, in TaskInput) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}
