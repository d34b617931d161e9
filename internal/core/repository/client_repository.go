package repository

import (
	"context"

	"github.com/martijn/clientbook/internal/core/domain"
)

// ClientRepository is the data-access contract for client records. Every
// failure is returned as a *StorageFault; absence on lookup is not a failure.
type ClientRepository interface {
	// List returns every client in a backend-defined, stable order. It returns
	// an empty slice when there are none.
	List(ctx context.Context) ([]domain.Client, error)

	// FindByKey resolves key to a single client. The bool is false when no
	// record matches.
	FindByKey(ctx context.Context, key domain.LookupKey) (domain.Client, bool, error)

	// Create stores a new client and assigns its ID and timestamps. A taken
	// tax ID or email fails with ErrDuplicate.
	Create(ctx context.Context, fields domain.ClientFields) (domain.Client, error)

	// Update changes only the non-nil fields of patch. A missing record fails
	// with ErrNotFound.
	Update(ctx context.Context, key domain.LookupKey, patch domain.ClientPatch) (domain.Client, error)

	// Delete removes the record and returns it as it was before removal.
	Delete(ctx context.Context, key domain.LookupKey) (domain.Client, error)
}
