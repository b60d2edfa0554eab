package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Client-facing messages. Internal error text never reaches a response.
const (
	MsgUsernameTaken      = "Username already exists. Please choose a different username."
	MsgEmailTaken         = "Email already exists. Please use a different email address."
	MsgDuplicateKey       = "Username or email already exists."
	MsgInvalidCredentials = "Invalid credentials"
	MsgUnauthorized       = "unauthorized"
	MsgInternal           = "Internal server error"
	MsgInvalidBody        = "Invalid request body"
)

var (
	// ErrUserNotFound is returned by repositories when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateKey is returned when a username or email uniqueness constraint is violated.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUsernameTaken is the DuplicateKey kind for the username field.
	ErrUsernameTaken = fmt.Errorf("username already exists: %w", ErrDuplicateKey)
	// ErrEmailTaken is the DuplicateKey kind for the email field.
	ErrEmailTaken = fmt.Errorf("email already exists: %w", ErrDuplicateKey)
	// ErrInvalidCredentials is returned when the identifier or the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a bearer token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthorized is returned when a request carries no usable identity.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports the first failing input rule of a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	// Internal holds the cause for logging; it is never rendered.
	Internal error
}

func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Message)
	}

	switch {
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusBadRequest, MsgUsernameTaken)
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, MsgEmailTaken)
	case errors.Is(err, ErrDuplicateKey):
		return NewHTTPError(http.StatusBadRequest, MsgDuplicateKey)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusForbidden, MsgUnauthorized)
	default:
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    MsgInternal,
			Internal:   err,
		}
	}
}
