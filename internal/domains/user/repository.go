package user

import (
	"context"
)

// Repository is the users table.
type Repository interface {
	// Create fills ID and timestamps. Returns ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, u *User) error
	// FindByID and FindByEmail return ErrUserNotFound when nothing matches.
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}
