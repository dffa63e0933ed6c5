package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrStaleHashToken = errors.New("hash token was already rotated")
)

type Repository interface {
	createUser(ctx context.Context, user *User) error
	userExistsByLoginOrEmail(ctx context.Context, login, email string) (*User, error)
	getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	getUserByID(ctx context.Context, id string) (*User, error)
	swapHashToken(ctx context.Context, id, current, next string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `id, name, email, login, password_hash, hash_token, created_at, updated_at`

func (r *userRepository) createUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (name, email, login, password_hash, hash_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.Login, user.PasswordHash, user.HashToken).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (r *userRepository) userExistsByLoginOrEmail(ctx context.Context, login, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 OR email = $2 LIMIT 1`
	return r.queryUser(ctx, query, login, email)
}

func (r *userRepository) getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 OR email = LOWER($1) LIMIT 1`
	return r.queryUser(ctx, query, loginOrEmail)
}

func (r *userRepository) getUserByID(ctx context.Context, id string) (*User, error) {
	// ids arrive from JWT claims; a malformed one cannot match a uuid column
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryUser(ctx, query, id)
}

// swapHashToken replaces the hash token only while it still equals current, so
// two refreshes racing on the same token cannot both succeed.
func (r *userRepository) swapHashToken(ctx context.Context, id, current, next string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	query := `UPDATE users SET hash_token = $1, updated_at = NOW() WHERE id = $2 AND hash_token = $3`
	result, err := r.db.ExecContext(ctx, query, next, id, current)
	if err != nil {
		return fmt.Errorf("could not rotate hash token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not rotate hash token: %w", err)
	}
	if rows == 0 {
		return ErrStaleHashToken
	}
	return nil
}

func (r *userRepository) queryUser(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var user User
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Name, &user.Email, &user.Login,
		&user.PasswordHash, &user.HashToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	return &user, nil
}
