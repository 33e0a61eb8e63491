// Package memory provides in-process implementations of the storage ports
// for local development and tests. Uniqueness is enforced under a mutex, the
// same guarantee the Mongo unique index provides.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/taskflow/todo-api/internal/core/domain"
)

// UserStore implements ports.CredentialStore.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(user)
}

func (s *UserStore) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	newKey := emailKey(user.Email)
	if owner, taken := s.byEmail[newKey]; taken && owner != user.ID {
		return nil, domain.ErrUserExists
	}
	delete(s.byEmail, emailKey(current.Email))
	s.byEmail[newKey] = user.ID
	s.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (s *UserStore) FindOrCreate(_ context.Context, user *domain.User) (*domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEmail[emailKey(user.Email)]; ok {
		return cloneUser(s.byID[id]), false, nil
	}
	created, err := s.insertLocked(user)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// Len reports the number of stored users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *UserStore) insertLocked(user *domain.User) (*domain.User, error) {
	key := emailKey(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return nil, domain.ErrUserExists
	}
	c := cloneUser(user)
	c.ID = uuid.NewString()
	s.byID[c.ID] = c
	s.byEmail[key] = c.ID
	return cloneUser(c), nil
}
