package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "authgate/internal/errors"
	"authgate/internal/logging"
	"authgate/internal/model"
	"authgate/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(logging.Discard())
	return e
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const validRegisterBody = `{"fullName":"A B","username":"ab_1","email":"a@b.com","password":"secret1","confirmPassword":"secret1"}`

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		setupMock       func(*MockAuthService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "successful registration",
			body: validRegisterBody,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, service.RegisterInput{
					FullName: "A B", Username: "ab_1", Email: "a@b.com", Password: "secret1",
				}).Return(&model.User{ID: "user-1", FullName: "A B", Username: "ab_1", Email: "a@b.com", PasswordHash: "hash"}, nil)
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Registration successful",
		},
		{
			name:            "missing full name",
			body:            `{"username":"ab_1","email":"a@b.com","password":"secret1","confirmPassword":"secret1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Full name is required",
		},
		{
			name:            "username too short",
			body:            `{"fullName":"A B","username":"ab","email":"a@b.com","password":"secret1","confirmPassword":"secret1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Username must be at least 3 characters",
		},
		{
			name:            "username with invalid characters",
			body:            `{"fullName":"A B","username":"a-b!","email":"a@b.com","password":"secret1","confirmPassword":"secret1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Username can only contain letters, numbers, and underscores",
		},
		{
			name:            "invalid email",
			body:            `{"fullName":"A B","username":"ab_1","email":"not-an-email","password":"secret1","confirmPassword":"secret1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Please enter a valid email address",
		},
		{
			name:            "password too short",
			body:            `{"fullName":"A B","username":"ab_1","email":"a@b.com","password":"12345","confirmPassword":"12345"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Password must be at least 6 characters",
		},
		{
			name:            "missing confirm password",
			body:            `{"fullName":"A B","username":"ab_1","email":"a@b.com","password":"secret1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Confirm password is required",
		},
		{
			name:            "passwords differ",
			body:            `{"fullName":"A B","username":"ab_1","email":"a@b.com","password":"secret1","confirmPassword":"secret2"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Passwords must match",
		},
		{
			name:            "first failing rule wins",
			body:            `{"username":"a","email":"bad","password":"1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Full name is required",
		},
		{
			name:            "malformed body",
			body:            `{"fullName":`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: apperrors.MsgInvalidBody,
		},
		{
			name: "username taken",
			body: validRegisterBody,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUsernameTaken)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: apperrors.MsgUsernameTaken,
		},
		{
			name: "email taken",
			body: validRegisterBody,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEmailTaken)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: apperrors.MsgEmailTaken,
		},
		{
			name: "storage failure",
			body: validRegisterBody,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: apperrors.MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			e := newTestEcho()
			h := NewAuthHandler(mockService, logging.Discard())
			e.POST("/api/auth/register", h.Register)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			body := decodeResponse(t, rec)
			assert.Equal(t, tt.expectedMessage, body["message"])

			if tt.expectedStatus == http.StatusCreated {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "user-1", data["_id"])
				assert.Equal(t, "ab_1", data["username"])
				assert.NotContains(t, data, "password")
				assert.NotContains(t, data, "PasswordHash")
			} else {
				assert.Nil(t, body["data"])
			}

			if tt.setupMock == nil {
				mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	expiresAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		body            string
		setupMock       func(*MockAuthService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "successful login",
			body: `{"identifier":"ab_1","password":"secret1"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "ab_1", "secret1").Return(&service.LoginResult{
					User:        &model.User{ID: "user-1", FullName: "A B", Username: "ab_1", Email: "a@b.com"},
					AccessToken: "token-value",
					ExpiresAt:   expiresAt,
				}, nil)
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Login successful",
		},
		{
			name:            "missing identifier",
			body:            `{"password":"secret1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Identifier and password are required",
		},
		{
			name:            "missing password",
			body:            `{"identifier":"ab_1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Identifier and password are required",
		},
		{
			name: "invalid credentials",
			body: `{"identifier":"ab_1","password":"wrong"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "ab_1", "wrong").Return(nil, apperrors.ErrInvalidCredentials)
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: apperrors.MsgInvalidCredentials,
		},
		{
			name: "storage failure",
			body: `{"identifier":"ab_1","password":"secret1"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "ab_1", "secret1").Return(nil, errors.New("timeout"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: apperrors.MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			e := newTestEcho()
			h := NewAuthHandler(mockService, logging.Discard())
			e.POST("/api/auth/login", h.Login)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			body := decodeResponse(t, rec)
			assert.Equal(t, tt.expectedMessage, body["message"])

			if tt.expectedStatus == http.StatusOK {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "user-1", data["_id"])
				assert.Equal(t, "token-value", data["accessToken"])
				assert.Equal(t, "Bearer", data["tokenType"])
				assert.Equal(t, "2030-01-01T00:00:00Z", data["expiresAt"])
			} else {
				assert.Nil(t, body["data"])
			}
			mockService.AssertExpectations(t)
		})
	}
}
