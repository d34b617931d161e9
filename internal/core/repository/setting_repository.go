package repository

import (
	"context"

	"github.com/martijn/clientbook/internal/core/domain"
)

type SettingRepository interface {
	// List returns all settings ordered by key.
	List(ctx context.Context) ([]domain.Setting, error)
}
