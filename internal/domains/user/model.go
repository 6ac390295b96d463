package user

import (
	"time"
)

// User is a back-office account. Only editors and admins can sign in.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	IsAdmin      bool       `db:"is_admin" json:"isAdmin"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleUser   Role = "USER"
)

func AllRoles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleUser}
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// EffectiveRole folds the legacy is_admin flag into the role.
func (u *User) EffectiveRole() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return u.Role
}

// CanSignIn reports whether the account may open a back-office session.
func (u *User) CanSignIn() bool {
	r := u.EffectiveRole()
	return r == RoleAdmin || r == RoleEditor
}

func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.EffectiveRole(),
		LastLoginAt: u.LastLoginAt,
	}
}
