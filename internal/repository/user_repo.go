package repository

import (
	"context"
	"errors"
	"fmt"

	"physionote/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserExists is returned when the Google account or email is already registered.
var ErrUserExists = errors.New("user_exists")

type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id string, name, avatarURL *string) (*model.User, error)
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `id, google_id, email, name, avatar_url, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.AvatarURL, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user by google id: %w", err)
	}
	return u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	q := `INSERT INTO users (google_id, email, name, avatar_url)
          VALUES ($1, $2, $3, $4)
          RETURNING ` + userColumns
	created, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, q, u.GoogleID, u.Email, u.Name, u.AvatarURL))
	if isUniqueViolation(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return created, nil
}

func (r *userRepo) UpdateUserProfile(ctx context.Context, id string, name, avatarURL *string) (*model.User, error) {
	q := `UPDATE users SET name = $2, avatar_url = $3, updated_at = NOW()
          WHERE id = $1
          RETURNING ` + userColumns
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, q, id, name, avatarURL))
	if err != nil {
		return nil, fmt.Errorf("update profile for user %s: %w", id, err)
	}
	return u, nil
}
