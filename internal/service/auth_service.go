package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authgate/internal/auth"
	apperrors "authgate/internal/errors"
	"authgate/internal/model"
	"authgate/internal/repository"
)

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User        *model.User
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
}

type authService struct {
	users      repository.UserRepository
	hasher     *auth.Hasher
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, jwtService *auth.JWTService) AuthService {
	return &authService{
		users:      users,
		hasher:     hasher,
		jwtService: jwtService,
	}
}

// Register creates a new user with a hashed password. Username is checked
// before email; the first conflict wins.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if err := s.ensureAvailable(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FullName:     input.FullName,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			// Lost a race with a concurrent registration: name the field.
			if probeErr := s.ensureAvailable(ctx, input.Username, input.Email); probeErr != nil {
				return nil, probeErr
			}
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user by username or email and issues an access token.
func (s *authService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.jwtService.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &LoginResult{
		User:        user,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return apperrors.ErrUsernameTaken
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return apperrors.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("check email: %w", err)
	}

	return nil
}
