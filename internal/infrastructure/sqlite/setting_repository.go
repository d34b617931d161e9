package sqlite

import (
	"context"
	"fmt"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

type settingRepository struct {
	db *DB
}

func NewSettingRepository(db *DB) repository.SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) List(ctx context.Context) ([]domain.Setting, error) {
	query := `
		SELECT id, "key", value, created_at, updated_at
		FROM setting
		ORDER BY "key"
	`
	settings := []domain.Setting{}
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, classify("list settings", fmt.Errorf("failed to list settings: %w", err))
	}
	for i := range settings {
		settings[i].CreatedAt = settings[i].CreatedAt.UTC()
		settings[i].UpdatedAt = settings[i].UpdatedAt.UTC()
	}
	return settings, nil
}
