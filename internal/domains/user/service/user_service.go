package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinenacional-backend/internal/domains/user"
	"cinenacional-backend/internal/shared/middleware"
	"cinenacional-backend/pkg/cache"
	"cinenacional-backend/pkg/jwt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// LoginPolicy bounds failed logins per email.
type LoginPolicy struct {
	MaxFailed  int
	LockoutTTL time.Duration
}

type userService struct {
	repo     user.Repository
	sessions cache.Cache
	tokens   *jwt.Manager
	policy   LoginPolicy
	now      func() time.Time
}

func NewUserService(repo user.Repository, sessions cache.Cache, tokens *jwt.Manager, policy LoginPolicy) user.Service {
	return &userService{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		policy:   policy,
		now:      time.Now,
	}
}

func sessionKey(jti string) string { return "session:" + jti }
func failedKey(email string) string { return "login:failed:" + email }
func lockedKey(email string) string { return "login:locked:" + email }

func (s *userService) Login(ctx context.Context, req user.LoginRequest, ip string) (*user.LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := req.Email

	locked, err := s.sessions.Exists(ctx, lockedKey(email))
	if err != nil {
		return nil, fmt.Errorf("check lockout: %w", err)
	}
	if locked {
		return nil, user.ErrAccountLocked
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.recordFailure(ctx, email, ip)
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	// bcrypt.CompareHashAndPassword is constant-time
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailure(ctx, email, ip)
		return nil, user.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, user.ErrUserInactive
	}
	if !u.CanSignIn() {
		return nil, user.ErrRoleNotAllowed
	}

	role := u.EffectiveRole()
	token, claims, err := s.tokens.Issue(u.ID, u.Email, role.String())
	if err != nil {
		return nil, err
	}

	record := user.SessionRecord{UserID: u.ID, Email: u.Email, Role: role, IP: ip, CreatedAt: s.now()}
	if err := s.sessions.Set(ctx, sessionKey(claims.ID), record, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	_ = s.sessions.Delete(ctx, failedKey(email))

	if err := s.repo.UpdateLastLogin(ctx, u.ID); err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Msg("update last login failed")
	}

	log.Info().Int64("user_id", u.ID).Str("role", role.String()).Str("ip", ip).Msg("session opened")
	return &user.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      u.ToDTO(),
	}, nil
}

// recordFailure counts a failed login and locks the email once the
// policy's limit is reached. Errors are logged, never returned.
func (s *userService) recordFailure(ctx context.Context, email, ip string) {
	attempts, err := s.sessions.Increment(ctx, failedKey(email))
	if err != nil {
		log.Warn().Err(err).Msg("count failed login")
		return
	}
	if attempts == 1 {
		if err := s.sessions.Expire(ctx, failedKey(email), s.policy.LockoutTTL); err != nil {
			log.Warn().Err(err).Msg("set failed login window")
		}
	}

	log.Warn().Str("email", email).Str("ip", ip).Int64("attempts", attempts).Msg("failed login")

	if attempts >= int64(s.policy.MaxFailed) {
		if err := s.sessions.Set(ctx, lockedKey(email), true, s.policy.LockoutTTL); err != nil {
			log.Warn().Err(err).Msg("lock account")
			return
		}
		_ = s.sessions.Delete(ctx, failedKey(email))
		log.Warn().Str("email", email).Dur("for", s.policy.LockoutTTL).Msg("account locked")
	}
}

func (s *userService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return user.ErrSessionRevoked
	}
	return s.sessions.Delete(ctx, sessionKey(sessionID))
}

func (s *userService) Authenticate(ctx context.Context, token string) (*middleware.Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, user.ErrSessionRevoked
	}

	var record user.SessionRecord
	found, err := s.sessions.Get(ctx, sessionKey(claims.ID), &record)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found || record.UserID != claims.UserID {
		return nil, user.ErrSessionRevoked
	}

	return &middleware.Session{
		ID:     claims.ID,
		UserID: record.UserID,
		Email:  record.Email,
		Role:   record.Role.String(),
	}, nil
}

func (s *userService) CurrentUser(ctx context.Context, userID int64) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) CreateUser(ctx context.Context, req user.CreateUserRequest) (*user.UserDTO, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         req.Role,
		IsAdmin:      req.Role == user.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}
