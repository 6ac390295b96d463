package middleware

import (
	"context"
	"strings"

	"cinenacional-backend/internal/shared/apperror"
	"cinenacional-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Roles allowed to mutate the catalogue.
const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
)

// Session is the authenticated caller.
type Session struct {
	ID     string // token jti
	UserID int64
	Email  string
	Role   string
}

// CanEdit reports whether the session may create, update or delete.
func (s *Session) CanEdit() bool {
	return s != nil && (s.Role == RoleAdmin || s.Role == RoleEditor)
}

// Authenticator resolves a session token, failing for invalid,
// expired or revoked ones.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Session, error)
}

// TokenFromRequest reads the session token from the cookie, falling back
// to an Authorization: Bearer header.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireEditor aborts with 401 unless the request carries a live ADMIN or
// EDITOR session. The handler behind it never runs for a rejected request.
func RequireEditor(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c, cookieName)
		if token == "" {
			response.Error(c, apperror.Unauthorized(""))
			return
		}
		s, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil || !s.CanEdit() {
			response.Error(c, apperror.Unauthorized(""))
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// CurrentSession returns the session set by RequireEditor.
func CurrentSession(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}
