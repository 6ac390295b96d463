package user

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("el email es obligatorio"), is.Email.Error("email inválido")),
		validation.Field(&r.Password, validation.Required.Error("la contraseña es obligatoria")),
	)
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

type UserDTO struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// CreateUserRequest is used by the maintenance CLI; there is no public sign-up.
type CreateUserRequest struct {
	Email    string
	Name     string
	Role     Role
	Password string
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email, validation.Length(5, 255)),
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Role, validation.Required, validation.In(RoleAdmin, RoleEditor, RoleUser).Error("rol inválido")),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(8, 128).Error("la contraseña debe tener entre 8 y 128 caracteres"),
			validation.Match(regexp.MustCompile(`[A-Za-z]`)).Error("la contraseña debe contener al menos una letra"),
			validation.Match(regexp.MustCompile(`[0-9]`)).Error("la contraseña debe contener al menos un número"),
		),
	)
}

// SessionRecord is stored under session:<jti> for the lifetime of the token.
type SessionRecord struct {
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}
