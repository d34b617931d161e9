package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

type userRepository struct {
	store *Store
	items map[string]domain.User
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.begin(ctx, "create user"); err != nil {
		return err
	}
	if _, ok := r.items[user.Username]; ok {
		return repository.Fault("create user", fmt.Errorf("%w: user %s", repository.ErrDuplicate, user.Username))
	}
	r.items[user.Username] = *user
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.begin(ctx, "find user"); err != nil {
		return nil, err
	}
	user, ok := r.items[username]
	if !ok {
		return nil, repository.Fault("find user", fmt.Errorf("%w: user %s", repository.ErrNotFound, username))
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, username string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.begin(ctx, "find user"); err != nil {
		return false, err
	}
	_, ok := r.items[username]
	return ok, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.begin(ctx, "update user"); err != nil {
		return err
	}
	if _, ok := r.items[user.Username]; !ok {
		return repository.Fault("update user", fmt.Errorf("%w: user %s", repository.ErrNotFound, user.Username))
	}
	r.items[user.Username] = *user
	return nil
}

func (r *userRepository) Delete(ctx context.Context, username string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.begin(ctx, "delete user"); err != nil {
		return err
	}
	if _, ok := r.items[username]; !ok {
		return repository.Fault("delete user", fmt.Errorf("%w: user %s", repository.ErrNotFound, username))
	}
	delete(r.items, username)
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.begin(ctx, "list users"); err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(r.items))
	for _, u := range r.items {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}
