package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cinenacional-backend/internal/domains/user"
	"cinenacional-backend/internal/infrastructure/database"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/pkg/cache"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	userCacheTTL = 10 * time.Minute
	userColumns  = `id, email, name, password_hash, role, is_admin, is_active, last_login_at, created_at, updated_at`
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache // may be nil
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) user.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

func cacheKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, role, is_admin, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		u.Email, u.Name, u.PasswordHash, u.Role, u.IsAdmin, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(database.MapError(err), crud.ErrDuplicate) {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID is read-through cached for GET /auth/session. Cached copies
// carry no password hash; login reads through FindByEmail.
func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	if r.cache != nil {
		var cached user.User
		if found, err := r.cache.Get(ctx, cacheKey(id), &cached); err == nil && found {
			return &cached, nil
		}
	}

	u, err := r.findOne(ctx, "id = $1", id)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey(id), u, userCacheTTL); err != nil {
			log.Warn().Err(err).Int64("user_id", id).Msg("cache user failed")
		}
	}
	return u, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *postgresRepository) findOne(ctx context.Context, where string, arg any) (*user.User, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	if r.cache != nil {
		_ = r.cache.Delete(ctx, cacheKey(id))
	}
	return nil
}
