package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

type clientRepository struct {
	store *Store

	// items keeps insertion order; deleted slots are compacted away.
	items []domain.Client
	byID  map[string]int
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.begin(ctx, "list clients"); err != nil {
		return nil, err
	}

	clients := make([]domain.Client, 0, len(r.items))
	for _, c := range r.items {
		clients = append(clients, c.Clone())
	}
	return clients, nil
}

func (r *clientRepository) FindByKey(ctx context.Context, key domain.LookupKey) (domain.Client, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.begin(ctx, "find client"); err != nil {
		return domain.Client{}, false, err
	}
	if key.IsZero() {
		return domain.Client{}, false, repository.Fault("find client", repository.ErrInvalidKey)
	}

	idx, ok := r.indexOf(key)
	if !ok {
		return domain.Client{}, false, nil
	}
	return r.items[idx].Clone(), true, nil
}

func (r *clientRepository) Create(ctx context.Context, fields domain.ClientFields) (domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.begin(ctx, "create client"); err != nil {
		return domain.Client{}, err
	}
	if strings.TrimSpace(fields.Name) == "" {
		return domain.Client{}, repository.Fault("create client", fmt.Errorf("%w: name is required", repository.ErrInvalidData))
	}

	client := domain.NewClient(fields, r.store.now())
	if err := r.checkUnique(client, -1); err != nil {
		return domain.Client{}, repository.Fault("create client", err)
	}

	r.byID[client.ID] = len(r.items)
	r.items = append(r.items, client)
	return client.Clone(), nil
}

func (r *clientRepository) Update(ctx context.Context, key domain.LookupKey, patch domain.ClientPatch) (domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.begin(ctx, "update client"); err != nil {
		return domain.Client{}, err
	}
	if key.IsZero() {
		return domain.Client{}, repository.Fault("update client", repository.ErrInvalidKey)
	}

	idx, ok := r.indexOf(key)
	if !ok {
		return domain.Client{}, repository.Fault("update client", fmt.Errorf("%w: client %s", repository.ErrNotFound, key))
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Client{}, repository.Fault("update client", fmt.Errorf("%w: name is required", repository.ErrInvalidData))
	}

	updated := r.items[idx].Apply(patch, r.store.now())
	if err := r.checkUnique(updated, idx); err != nil {
		return domain.Client{}, repository.Fault("update client", err)
	}

	r.items[idx] = updated
	return updated.Clone(), nil
}

func (r *clientRepository) Delete(ctx context.Context, key domain.LookupKey) (domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.begin(ctx, "delete client"); err != nil {
		return domain.Client{}, err
	}
	if key.IsZero() {
		return domain.Client{}, repository.Fault("delete client", repository.ErrInvalidKey)
	}

	idx, ok := r.indexOf(key)
	if !ok {
		return domain.Client{}, repository.Fault("delete client", fmt.Errorf("%w: client %s", repository.ErrNotFound, key))
	}

	deleted := r.items[idx]
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	delete(r.byID, deleted.ID)
	for i := idx; i < len(r.items); i++ {
		r.byID[r.items[i].ID] = i
	}
	return deleted, nil
}

// indexOf resolves key. Callers hold the store lock.
func (r *clientRepository) indexOf(key domain.LookupKey) (int, bool) {
	if key.ID != "" {
		idx, ok := r.byID[key.ID]
		return idx, ok
	}
	for i, c := range r.items {
		if key.Matches(c) {
			return i, true
		}
	}
	return 0, false
}

// checkUnique rejects a tax ID or email already held by another record.
// skip is the index of the record being replaced, or -1.
func (r *clientRepository) checkUnique(c domain.Client, skip int) error {
	for i, other := range r.items {
		if i == skip {
			continue
		}
		if c.TaxID != nil && other.TaxID != nil && *c.TaxID == *other.TaxID {
			return fmt.Errorf("%w: tax_id %q", repository.ErrDuplicate, *c.TaxID)
		}
		if c.Email != nil && other.Email != nil && *c.Email == *other.Email {
			return fmt.Errorf("%w: email %q", repository.ErrDuplicate, *c.Email)
		}
	}
	return nil
}
