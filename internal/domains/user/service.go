package user

import (
	"context"

	"cinenacional-backend/internal/shared/middleware"
)

// Service is the session and account logic.
type Service interface {
	Login(ctx context.Context, req LoginRequest, ip string) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	// Authenticate implements middleware.Authenticator.
	Authenticate(ctx context.Context, token string) (*middleware.Session, error)
	CurrentUser(ctx context.Context, userID int64) (*UserDTO, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
}
