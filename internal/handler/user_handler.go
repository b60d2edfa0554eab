package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"authgate/internal/auth"
	apperrors "authgate/internal/errors"
	"authgate/internal/service"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=UserResponse}
// @Failure 403 {object} Response
// @Failure 500 {object} Response
// @Router /auth/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	claims, ok := auth.ClaimsFromContext(c.Request().Context())
	if !ok {
		return apperrors.ErrUnauthorized
	}

	user, err := h.svc.GetProfile(c.Request().Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrUnauthorized
		}
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Message: "User profile",
		Data:    newUserResponse(user),
	})
}
