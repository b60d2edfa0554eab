package repository

import (
	"context"

	"authgate/internal/model"
)

// UserRepository defines persistence operations for users.
//
// Lookups return errors.ErrUserNotFound when nothing matches. Create returns
// an error wrapping errors.ErrDuplicateKey when the username or the email is
// already taken, whether the violation is caught by the repository or by the
// storage layer.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByIdentifier matches identifier against the username or the email.
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
}
