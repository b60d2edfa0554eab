package handler

import (
	"time"

	"authgate/internal/model"
)

// Response is the envelope of every JSON response.
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// UserResponse is the outward representation of a user. It never carries the
// password hash.
type UserResponse struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	UserResponse
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func newUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		FullName: user.FullName,
		Username: user.Username,
		Email:    user.Email,
	}
}
