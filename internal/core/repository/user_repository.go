package repository

import (
	"context"

	"github.com/martijn/clientbook/internal/core/domain"
)

// UserRepository stores the operators that may sign in to the HTTP API.
// FindByUsername, Update and Delete fail with ErrNotFound for unknown users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.User, error)
}
