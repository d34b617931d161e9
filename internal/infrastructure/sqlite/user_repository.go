package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO user (username, password, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return classify("create user", fmt.Errorf("failed to create user %s: %w", user.Username, err))
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT username, password, created_at, updated_at
		FROM user
		WHERE username = ?
	`
	var user domain.User
	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.Fault("find user", fmt.Errorf("%w: user %s", repository.ErrNotFound, username))
	}
	if err != nil {
		return nil, classify("find user", fmt.Errorf("failed to find user: %w", err))
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM user WHERE username = ?`, username)
	if err != nil {
		return false, classify("find user", fmt.Errorf("failed to check user: %w", err))
	}
	return n > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE user
		SET password = ?, updated_at = ?
		WHERE username = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Password,
		user.UpdatedAt,
		user.Username,
	)
	if err != nil {
		return classify("update user", fmt.Errorf("failed to update user: %w", err))
	}
	return requireRow(result, "update user", user.Username)
}

func (r *userRepository) Delete(ctx context.Context, username string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user WHERE username = ?`, username)
	if err != nil {
		return classify("delete user", fmt.Errorf("failed to delete user: %w", err))
	}
	return requireRow(result, "delete user", username)
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT username, password, created_at, updated_at
		FROM user
		ORDER BY username
	`
	users := []*domain.User{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, classify("list users", fmt.Errorf("failed to list users: %w", err))
	}
	return users, nil
}

func requireRow(result sql.Result, op, username string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return classify(op, fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return repository.Fault(op, fmt.Errorf("%w: user %s", repository.ErrNotFound, username))
	}
	return nil
}
