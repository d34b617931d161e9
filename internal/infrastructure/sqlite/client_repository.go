package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

const clientColumns = `id, name, tax_id, email, phone, address, note, created_at, updated_at`

type clientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM client ORDER BY created_at, id`

	clients := []domain.Client{}
	if err := r.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, classify("list clients", fmt.Errorf("failed to list clients: %w", err))
	}
	for i := range clients {
		normalize(&clients[i])
	}
	return clients, nil
}

func (r *clientRepository) FindByKey(ctx context.Context, key domain.LookupKey) (domain.Client, bool, error) {
	if key.IsZero() {
		return domain.Client{}, false, repository.Fault("find client", repository.ErrInvalidKey)
	}
	client, ok, err := findByKey(ctx, r.db, key)
	if err != nil {
		return domain.Client{}, false, classify("find client", err)
	}
	return client, ok, nil
}

func (r *clientRepository) Create(ctx context.Context, fields domain.ClientFields) (domain.Client, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return domain.Client{}, repository.Fault("create client", fmt.Errorf("%w: name is required", repository.ErrInvalidData))
	}

	client := domain.NewClient(fields, time.Now())
	query := `
		INSERT INTO client (` + clientColumns + `)
		VALUES (:id, :name, :tax_id, :email, :phone, :address, :note, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return domain.Client{}, classify("create client", fmt.Errorf("failed to create client: %w", err))
	}
	return client, nil
}

func (r *clientRepository) Update(ctx context.Context, key domain.LookupKey, patch domain.ClientPatch) (domain.Client, error) {
	if key.IsZero() {
		return domain.Client{}, repository.Fault("update client", repository.ErrInvalidKey)
	}
	var updated domain.Client
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		current, ok, err := findByKey(ctx, tx, key)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: client %s", repository.ErrNotFound, key)
		}
		if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
			return fmt.Errorf("%w: name is required", repository.ErrInvalidData)
		}

		updated = current.Apply(patch, time.Now())
		query := `
			UPDATE client
			SET name = :name, tax_id = :tax_id, email = :email, phone = :phone,
				address = :address, note = :note, updated_at = :updated_at
			WHERE id = :id
		`
		if _, err := tx.NamedExecContext(ctx, query, updated); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Client{}, classify("update client", err)
	}
	return updated, nil
}

func (r *clientRepository) Delete(ctx context.Context, key domain.LookupKey) (domain.Client, error) {
	if key.IsZero() {
		return domain.Client{}, repository.Fault("delete client", repository.ErrInvalidKey)
	}

	var deleted domain.Client
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		current, ok, err := findByKey(ctx, tx, key)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: client %s", repository.ErrNotFound, key)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM client WHERE id = ?`, current.ID); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		deleted = current
		return nil
	})
	if err != nil {
		return domain.Client{}, classify("delete client", err)
	}
	return deleted, nil
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func (r *clientRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// findByKey resolves key with q, which is either the pool or a transaction.
func findByKey(ctx context.Context, q sqlx.QueryerContext, key domain.LookupKey) (domain.Client, bool, error) {
	var column, value string
	switch {
	case key.ID != "":
		column, value = "id", key.ID
	case key.TaxID != "":
		column, value = "tax_id", key.TaxID
	default:
		column, value = "email", key.Email
	}

	query := `SELECT ` + clientColumns + ` FROM client WHERE ` + column + ` = ?`
	var client domain.Client
	err := sqlx.GetContext(ctx, q, &client, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, false, nil
	}
	if err != nil {
		return domain.Client{}, false, fmt.Errorf("failed to find client: %w", err)
	}
	normalize(&client)
	return client, true, nil
}

// normalize puts scanned timestamps in UTC.
func normalize(c *domain.Client) {
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
}
