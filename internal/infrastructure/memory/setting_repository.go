package memory

import (
	"context"
	"sort"

	"github.com/martijn/clientbook/internal/core/domain"
)

type settingRepository struct {
	store *Store
	items []domain.Setting
}

func (r *settingRepository) List(ctx context.Context) ([]domain.Setting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.begin(ctx, "list settings"); err != nil {
		return nil, err
	}

	settings := append(make([]domain.Setting, 0, len(r.items)), r.items...)
	sort.SliceStable(settings, func(i, j int) bool {
		return settings[i].Key < settings[j].Key
	})
	return settings, nil
}
