package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/taskflow/todo-api/internal/core/domain"
)

// TaskStore implements ports.TaskRepository.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

func (s *TaskStore) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneTask(t)
	c.ID = uuid.NewString()
	s.tasks[c.ID] = c
	return cloneTask(c), nil
}

func (s *TaskStore) ListByUser(_ context.Context, userID string) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *TaskStore) FindByID(_ context.Context, userID, taskID string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (s *TaskStore) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tasks[t.ID]
	if !ok || current.UserID != t.UserID {
		return nil, domain.ErrTaskNotFound
	}
	c := cloneTask(t)
	c.CreatedAt = current.CreatedAt
	s.tasks[t.ID] = c
	return cloneTask(c), nil
}

func (s *TaskStore) Delete(_ context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}
