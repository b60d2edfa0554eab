package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "authgate/internal/errors"
	"authgate/internal/model"
)

// MemoryUserRepository keeps users in process memory. Uniqueness is checked
// and the record inserted under one lock, so concurrent registrations of the
// same username cannot both succeed.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]model.User
	byUsername map[string]string
	byEmail    map[string]string
}

// NewMemoryUserRepository creates an empty in-memory repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[string]model.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

var _ UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return fmt.Errorf("create user: username %q: %w", user.Username, apperrors.ErrDuplicateKey)
	}
	if _, taken := r.byEmail[user.Email]; taken {
		return fmt.Errorf("create user: email %q: %w", user.Email, apperrors.ErrDuplicateKey)
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	r.byID[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(r.byUsername[username])
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(r.byEmail[email])
}

func (r *MemoryUserRepository) FindByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byUsername[identifier]; ok {
		return r.get(id)
	}
	return r.get(r.byEmail[identifier])
}

// Len returns the number of stored users.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *MemoryUserRepository) get(id string) (*model.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}
