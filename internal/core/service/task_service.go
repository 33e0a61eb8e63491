package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/todo-api/internal/core/domain"
	"github.com/taskflow/todo-api/internal/core/ports"
)

const maxTitleLength = 200

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger, now: time.Now}
}

// Create stores a new task owned by userID. Priority defaults to Low.
func (s *TaskService) Create(ctx context.Context, userID string, in ports.TaskInput) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	priority, err := validateTask(in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task, err := s.repo.Create(ctx, &domain.Task{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     in.DueDate,
		Completed:   in.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Debug().Str("task_id", task.ID).Str("user_id", userID).Msg("task created")
	return task, nil
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update replaces the writable fields of one of the user's tasks.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, in ports.TaskInput) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if taskID == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	priority, err := validateTask(in)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = strings.TrimSpace(in.Title)
	task.Description = strings.TrimSpace(in.Description)
	task.Priority = priority
	task.DueDate = in.DueDate
	task.Completed = in.Completed
	task.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// Delete removes one of the user's tasks.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if taskID == "" {
		return domain.NewValidationError("id", "is required")
	}
	return s.repo.Delete(ctx, userID, taskID)
}

func validateTask(in ports.TaskInput) (domain.TaskPriority, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", domain.NewValidationError("title", "is required")
	}
	if len(title) > maxTitleLength {
		return "", domain.NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	priority := domain.TaskPriority(in.Priority)
	if priority == "" {
		priority = domain.PriorityLow
	}
	if !priority.Valid() {
		return "", domain.NewValidationError("priority", "must be one of: Low Medium High")
	}
	return priority, nil
}
