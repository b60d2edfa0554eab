package service

import (
	"context"
	"time"

	"authgate/internal/cache"
	"authgate/internal/model"
	"authgate/internal/repository"
)

// UserService exposes read access to user profiles.
type UserService interface {
	GetProfile(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
	ttl   time.Duration
}

// NewUserService builds a UserService with repository and cache. A nil cache
// disables caching.
func NewUserService(repo repository.UserRepository, cache *cache.Client, ttl time.Duration) UserService {
	return &userService{repo: repo, cache: cache, ttl: ttl}
}

func (s *userService) cacheKey(id string) string {
	return "user:" + id
}

// GetProfile reads through the cache. The cached value never contains the
// password hash.
func (s *userService) GetProfile(ctx context.Context, id string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) && cached.ID == id {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, s.ttl)
	return user, nil
}
