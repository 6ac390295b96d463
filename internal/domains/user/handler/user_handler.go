package handler

import (
	"errors"
	"net/http"
	"time"

	"cinenacional-backend/internal/domains/user"
	"cinenacional-backend/internal/shared/apperror"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/middleware"
	"cinenacional-backend/internal/shared/response"
	"cinenacional-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type UserHandler struct {
	service user.Service
	cookie  CookieConfig
}

func NewUserHandler(service user.Service, cookie CookieConfig) *UserHandler {
	return &UserHandler{service: service, cookie: cookie}
}

// Login handles POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("JSON inválido", map[string]any{"body": err.Error()}))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req, utils.ExtractClientIP(c))
	if err != nil {
		h.handleError(c, "login", err)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, res.Token, maxAge, "/", "", h.cookie.Secure, true)
	response.OK(c, res)
}

// Logout handles POST /auth/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, apperror.Unauthorized(""))
		return
	}
	if err := h.service.Logout(c.Request.Context(), s.ID); err != nil {
		h.handleError(c, "logout", err)
		return
	}
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.NoContent(c)
}

// Session handles GET /auth/session.
func (h *UserHandler) Session(c *gin.Context) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, apperror.Unauthorized(""))
		return
	}
	u, err := h.service.CurrentUser(c.Request.Context(), s.UserID)
	if err != nil {
		h.handleError(c, "session", err)
		return
	}
	response.OK(c, gin.H{"user": u})
}

func (h *UserHandler) handleError(c *gin.Context, action string, err error) {
	var fields validation.Errors
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		response.Error(c, apperror.Unauthorized("Email o contraseña incorrectos"))
	case errors.Is(err, user.ErrAccountLocked):
		response.Error(c, apperror.Unauthorized("Demasiados intentos fallidos, intente nuevamente más tarde"))
	case errors.Is(err, user.ErrUserInactive),
		errors.Is(err, user.ErrRoleNotAllowed),
		errors.Is(err, user.ErrSessionRevoked),
		errors.Is(err, user.ErrUserNotFound):
		response.Error(c, apperror.Unauthorized(""))
	case errors.As(err, &fields):
		response.Error(c, crud.ValidationError(err))
	default:
		log.Error().Err(err).Str("action", action).Str("request_id", c.GetString("request_id")).Msg("auth request failed")
		response.Error(c, apperror.Internal(err))
	}
}
