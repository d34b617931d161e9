// Package repositorytest holds the behaviour every ClientRepository backend
// must share. Backend packages call RunClientContract from their tests.
package repositorytest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

// Factory returns an empty repository. Cleanup is the factory's job.
type Factory func(t *testing.T) repository.ClientRepository

func Ptr(s string) *string { return &s }

// RunClientContract runs the shared contract against repositories built by newRepo.
func RunClientContract(t *testing.T, newRepo Factory) {
	t.Run("list empty", func(t *testing.T) {
		repo := newRepo(t)
		clients, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, clients)
		assert.Empty(t, clients)
	})

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		c, err := repo.Create(context.Background(), domain.ClientFields{
			Name:  "Ana Silva",
			Email: Ptr("ana@x.com"),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "Ana Silva", c.Name)
		require.NotNil(t, c.Email)
		assert.Equal(t, "ana@x.com", *c.Email)
		assert.Nil(t, c.TaxID)
		assert.Nil(t, c.Phone)
		assert.Nil(t, c.Address)
		assert.Nil(t, c.Note)
		assert.False(t, c.CreatedAt.IsZero())
		assert.True(t, c.CreatedAt.Equal(c.UpdatedAt))
	})

	t.Run("create rejects empty name", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(context.Background(), domain.ClientFields{Name: ""})
		require.Error(t, err)
		assert.True(t, repository.IsStorageFault(err))
		assert.ErrorIs(t, err, repository.ErrInvalidData)
	})

	t.Run("find by every key", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		created, err := repo.Create(ctx, domain.ClientFields{
			Name:    "Bruno Costa",
			TaxID:   Ptr("12.345.678/0001-90"),
			Email:   Ptr("bruno@x.com"),
			Phone:   Ptr("+55 21 3333-4444"),
			Address: Ptr("Rua A, 1"),
			Note:    Ptr("prefers email"),
		})
		require.NoError(t, err)

		keys := []domain.LookupKey{
			domain.ByID(created.ID),
			{TaxID: "12.345.678/0001-90"},
			{Email: "bruno@x.com"},
		}
		for _, key := range keys {
			got, ok, err := repo.FindByKey(ctx, key)
			require.NoError(t, err, key.String())
			require.True(t, ok, key.String())
			assertSameClient(t, created, got)
		}

		_, ok, err := repo.FindByKey(ctx, domain.ByID("nonexistent-id"))
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = repo.FindByKey(ctx, domain.LookupKey{ID: "nonexistent-id", Email: "bruno@x.com"})
		require.NoError(t, err)
		assert.False(t, ok, "id takes precedence over email")
	})

	t.Run("find with zero key is a fault", func(t *testing.T) {
		repo := newRepo(t)
		_, _, err := repo.FindByKey(context.Background(), domain.LookupKey{})
		assert.True(t, repository.IsStorageFault(err))
		assert.ErrorIs(t, err, repository.ErrInvalidKey)
	})

	t.Run("unique tax id and email", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		_, err := repo.Create(ctx, domain.ClientFields{Name: "A", TaxID: Ptr("111"), Email: Ptr("a@x.com")})
		require.NoError(t, err)

		_, err = repo.Create(ctx, domain.ClientFields{Name: "B", TaxID: Ptr("111")})
		require.Error(t, err)
		assert.True(t, repository.IsStorageFault(err))
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		_, err = repo.Create(ctx, domain.ClientFields{Name: "C", Email: Ptr("a@x.com")})
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		// Absent optional values never collide.
		_, err = repo.Create(ctx, domain.ClientFields{Name: "D"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, domain.ClientFields{Name: "E"})
		require.NoError(t, err)

		clients, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, clients, 3)
		withTax := 0
		for _, c := range clients {
			if c.TaxID != nil && *c.TaxID == "111" {
				withTax++
			}
		}
		assert.Equal(t, 1, withTax)
	})

	t.Run("update preserves untouched fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		orig, err := repo.Create(ctx, domain.ClientFields{
			Name:  "Ana Silva",
			Email: Ptr("ana@x.com"),
			Phone: Ptr("555"),
		})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, domain.ByID(orig.ID), domain.ClientPatch{Email: Ptr("ana2@x.com")})
		require.NoError(t, err)
		assert.Equal(t, orig.ID, updated.ID)
		assert.Equal(t, "Ana Silva", updated.Name)
		assert.Equal(t, "ana2@x.com", *updated.Email)
		assert.Equal(t, "555", *updated.Phone)
		assert.Nil(t, updated.TaxID)
		assert.True(t, orig.CreatedAt.Equal(updated.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(orig.UpdatedAt))

		got, ok, err := repo.FindByKey(ctx, domain.ByID(orig.ID))
		require.NoError(t, err)
		require.True(t, ok)
		assertSameClient(t, updated, got)

		again, err := repo.Update(ctx, domain.LookupKey{Email: "ana2@x.com"}, domain.ClientPatch{Note: Ptr("n")})
		require.NoError(t, err)
		assert.True(t, again.UpdatedAt.After(updated.UpdatedAt))
		assert.Equal(t, "n", *again.Note)
	})

	t.Run("update missing record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		_, err := repo.Create(ctx, domain.ClientFields{Name: "Keep"})
		require.NoError(t, err)

		_, err = repo.Update(ctx, domain.ByID("nonexistent-id"), domain.ClientPatch{Name: Ptr("X")})
		require.Error(t, err)
		assert.True(t, repository.IsStorageFault(err))
		assert.ErrorIs(t, err, repository.ErrNotFound)

		clients, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, clients, 1)
		assert.Equal(t, "Keep", clients[0].Name)
	})

	t.Run("update missing record with empty name", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Update(context.Background(), domain.ByID("nonexistent-id"), domain.ClientPatch{Name: Ptr("")})
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NotErrorIs(t, err, repository.ErrInvalidData)
	})

	t.Run("update into duplicate", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		_, err := repo.Create(ctx, domain.ClientFields{Name: "A", Email: Ptr("a@x.com")})
		require.NoError(t, err)
		b, err := repo.Create(ctx, domain.ClientFields{Name: "B", Email: Ptr("b@x.com")})
		require.NoError(t, err)

		_, err = repo.Update(ctx, domain.ByID(b.ID), domain.ClientPatch{Email: Ptr("a@x.com")})
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		got, ok, err := repo.FindByKey(ctx, domain.ByID(b.ID))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "b@x.com", *got.Email, "failed update must not change the record")
	})

	t.Run("update name to empty", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		c, err := repo.Create(ctx, domain.ClientFields{Name: "A"})
		require.NoError(t, err)
		_, err = repo.Update(ctx, domain.ByID(c.ID), domain.ClientPatch{Name: Ptr("")})
		assert.ErrorIs(t, err, repository.ErrInvalidData)
	})

	t.Run("delete returns the record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		c, err := repo.Create(ctx, domain.ClientFields{Name: "Gone", TaxID: Ptr("999")})
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, domain.ByID(c.ID))
		require.NoError(t, err)
		assertSameClient(t, c, deleted)

		_, ok, err := repo.FindByKey(ctx, domain.ByID(c.ID))
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repo.Delete(ctx, domain.ByID(c.ID))
		assert.ErrorIs(t, err, repository.ErrNotFound)

		// The freed tax id can be reused.
		_, err = repo.Create(ctx, domain.ClientFields{Name: "Again", TaxID: Ptr("999")})
		assert.NoError(t, err)
	})

	t.Run("list order is stable", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for _, name := range []string{"Carla", "Ana", "Bruno"} {
			_, err := repo.Create(ctx, domain.ClientFields{Name: name})
			require.NoError(t, err)
		}
		first, err := repo.List(ctx)
		require.NoError(t, err)
		second, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, first, 3)
		for i := range first {
			assert.Equal(t, first[i].ID, second[i].ID)
		}
	})

	t.Run("concurrent creates", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Create(ctx, domain.ClientFields{Name: "parallel"})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
		clients, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, clients, n)
	})
}

func assertSameClient(t *testing.T, want, got domain.Client) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.TaxID, got.TaxID)
	assert.Equal(t, want.Email, got.Email)
	assert.Equal(t, want.Phone, got.Phone)
	assert.Equal(t, want.Address, got.Address)
	assert.Equal(t, want.Note, got.Note)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated_at %v != %v", want.UpdatedAt, got.UpdatedAt)
}
