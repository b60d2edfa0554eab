package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "authgate/internal/errors"
	"authgate/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	FullName        string `json:"fullName" validate:"required" example:"A B"`
	Username        string `json:"username" validate:"required,min=3,username" example:"ab_1"`
	Email           string `json:"email" validate:"required,email" example:"a@b.com"`
	Password        string `json:"password" validate:"required,min=6" example:"secret1"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" example:"secret1"`
}

var registerMessages = map[string]string{
	"fullName.required":        "Full name is required",
	"username.required":        "Username is required",
	"username.min":             "Username must be at least 3 characters",
	"username.username":        "Username can only contain letters, numbers, and underscores",
	"email.required":           "Email is required",
	"email.email":              "Please enter a valid email address",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 6 characters",
	"confirmPassword.required": "Confirm password is required",
	"confirmPassword.eqfield":  "Passwords must match",
}

func (RegisterRequest) validationMessage(field, tag string) string {
	return registerMessages[field+"."+tag]
}

// LoginRequest represents a user login request. Identifier is a username or
// an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required" example:"ab_1"`
	Password   string `json:"password" validate:"required" example:"secret1"`
}

func (LoginRequest) validationMessage(string, string) string {
	return "Identifier and password are required"
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} Response{data=UserResponse}
// @Failure 400 {object} Response
// @Failure 500 {object} Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, apperrors.MsgInvalidBody)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.logger.InfoContext(c.Request().Context(), "user registered", "user_id", user.ID)

	return c.JSON(http.StatusCreated, Response{
		Message: "Registration successful",
		Data:    newUserResponse(user),
	})
}

// Login godoc
// @Summary Login user
// @Description Identifier may be the username or the email. The returned access token is sent as "Authorization: Bearer <token>" on protected routes.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=LoginResponse}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 500 {object} Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, apperrors.MsgInvalidBody)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Message: "Login successful",
		Data: LoginResponse{
			UserResponse: newUserResponse(result.User),
			AccessToken:  result.AccessToken,
			TokenType:    "Bearer",
			ExpiresAt:    result.ExpiresAt,
		},
	})
}
