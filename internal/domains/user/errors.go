package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrRoleNotAllowed     = errors.New("role cannot open a back-office session")
	ErrAccountLocked      = errors.New("too many failed logins, account temporarily locked")
	ErrSessionRevoked     = errors.New("session revoked or expired")
)
