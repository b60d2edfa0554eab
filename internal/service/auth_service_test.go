package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authgate/internal/auth"
	apperrors "authgate/internal/errors"
	"authgate/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.userResult(m.Called(ctx, id))
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.userResult(m.Called(ctx, username))
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.userResult(m.Called(ctx, email))
}

func (m *MockUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return m.userResult(m.Called(ctx, identifier))
}

func (m *MockUserRepository) userResult(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestAuthService(repo *MockUserRepository) (AuthService, *auth.Hasher, *auth.JWTService) {
	hasher := auth.NewHasher(bcrypt.MinCost, "test-pepper")
	jwtService := auth.NewJWTService("test-secret", "authgate", time.Hour)
	return NewAuthService(repo, hasher, jwtService), hasher, jwtService
}

var validInput = RegisterInput{
	FullName: "A B",
	Username: "ab_1",
	Email:    "a@b.com",
	Password: "secret1",
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "successful registration",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "ab_1").Return(nil, apperrors.ErrUserNotFound)
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, apperrors.ErrUserNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
					args.Get(1).(*model.User).ID = "new-id"
				}).Return(nil)
			},
		},
		{
			name: "username already exists",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "ab_1").Return(&model.User{Username: "ab_1"}, nil)
			},
			expectedError: apperrors.ErrUsernameTaken,
		},
		{
			name: "email already exists",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "ab_1").Return(nil, apperrors.ErrUserNotFound)
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{Email: "a@b.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name: "storage constraint reports duplicate after a race",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "ab_1").Return(nil, apperrors.ErrUserNotFound).Once()
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, apperrors.ErrUserNotFound).Once()
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
					Return(fmt.Errorf("create user: %w", apperrors.ErrDuplicateKey))
				m.On("FindByUsername", mock.Anything, "ab_1").Return(&model.User{Username: "ab_1"}, nil).Once()
			},
			expectedError: apperrors.ErrUsernameTaken,
		},
		{
			name: "repository failure during uniqueness check",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "ab_1").Return(nil, errors.New("connection refused"))
			},
			expectedError: errors.New("check username: connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service, hasher, _ := newTestAuthService(mockRepo)
			user, err := service.Register(context.Background(), validInput)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, "new-id", user.ID)
				assert.Equal(t, "A B", user.FullName)
				assert.Equal(t, "ab_1", user.Username)
				assert.Equal(t, "a@b.com", user.Email)
				assert.NotEqual(t, validInput.Password, user.PasswordHash)
				assert.True(t, hasher.Verify(validInput.Password, user.PasswordHash))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_NoWriteOnConflict(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "ab_1").Return(nil, apperrors.ErrUserNotFound)
	mockRepo.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{Email: "a@b.com"}, nil)

	service, _, _ := newTestAuthService(mockRepo)
	_, err := service.Register(context.Background(), validInput)

	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost, "test-pepper")
	stored, err := hasher.Hash("secret1")
	require.NoError(t, err)
	existing := &model.User{ID: "user-1", FullName: "A B", Username: "ab_1", Email: "a@b.com", PasswordHash: stored}

	tests := []struct {
		name          string
		identifier    string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:       "successful login by username",
			identifier: "ab_1",
			password:   "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "ab_1").Return(existing, nil)
			},
		},
		{
			name:       "successful login by email",
			identifier: "a@b.com",
			password:   "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "a@b.com").Return(existing, nil)
			},
		},
		{
			name:       "invalid credentials - user not found",
			identifier: "nobody",
			password:   "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "nobody").Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:       "invalid credentials - wrong password",
			identifier: "ab_1",
			password:   "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByIdentifier", mock.Anything, "ab_1").Return(existing, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, hasher, auth.NewJWTService("test-secret", "authgate", time.Hour))
			result, err := service.Login(context.Background(), tt.identifier, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "user-1", result.User.ID)
				assert.NotEmpty(t, result.AccessToken)
				assert.True(t, result.ExpiresAt.After(time.Now()))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_TokenCarriesIdentity(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service, hasher, jwtService := newTestAuthService(mockRepo)

	stored, err := hasher.Hash("secret1")
	require.NoError(t, err)
	mockRepo.On("FindByIdentifier", mock.Anything, "ab_1").
		Return(&model.User{ID: "user-1", Username: "ab_1", Email: "a@b.com", PasswordHash: stored}, nil)

	result, err := service.Login(context.Background(), "ab_1", "secret1")
	require.NoError(t, err)

	claims, err := jwtService.Verify(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "ab_1", claims.Username)
}

func TestAuthService_Login_RepositoryFailureIsNotAuthFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByIdentifier", mock.Anything, "ab_1").Return(nil, errors.New("server selection timeout"))

	service, _, _ := newTestAuthService(mockRepo)
	_, err := service.Login(context.Background(), "ab_1", "secret1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "server selection timeout")
}
