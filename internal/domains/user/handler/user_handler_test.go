package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinenacional-backend/internal/domains/user"
	"cinenacional-backend/internal/domains/user/service"
	"cinenacional-backend/internal/shared/crud/crudtest"
	"cinenacional-backend/internal/shared/middleware"
	"cinenacional-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type oneUserRepo struct{ u *user.User }

func (r *oneUserRepo) Create(context.Context, *user.User) error { return nil }

func (r *oneUserRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	if id == r.u.ID {
		return r.u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *oneUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	if email == r.u.Email {
		return r.u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *oneUserRepo) UpdateLastLogin(context.Context, int64) error { return nil }

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &oneUserRepo{u: &user.User{ID: 9, Email: "editor@cinenacional.com", Name: "Ed", PasswordHash: string(hash), Role: user.RoleEditor, IsActive: true}}

	svc := service.NewUserService(repo, crudtest.NewCache(), jwt.NewManager("0123456789abcdef", 24*time.Hour),
		service.LoginPolicy{MaxFailed: 5, LockoutTTL: time.Minute})
	h := NewUserHandler(svc, CookieConfig{Name: "cn_session"})
	guard := middleware.RequireEditor(svc, "cn_session")

	r := gin.New()
	auth := r.Group("/api/v1/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", guard, h.Logout)
	auth.GET("/session", guard, h.Session)
	return r
}

func login(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLoginSessionLogout(t *testing.T) {
	r := setup(t)

	w := login(t, r, `{"email":"editor@cinenacional.com","password":"secreto123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res user.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "cn_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// cookie auth
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "cn_session", Value: res.Token})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"editor@cinenacional.com"`)

	// bearer logout
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_Errors(t *testing.T) {
	r := setup(t)

	w := login(t, r, `{"email":"editor@cinenacional.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Email o contraseña incorrectos"}`, w.Body.String())

	w = login(t, r, `{"email":"bad","password":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"details"`)
	assert.Contains(t, w.Body.String(), `"password"`)

	w = login(t, r, `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSession_RequiresLogin(t *testing.T) {
	r := setup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
