package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

const entityClient = "client"

// ClientView is the caller-facing shape of a client record.
type ClientView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	TaxID     *string `json:"taxId,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Note      *string `json:"note,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type SettingView struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type CreateClientInput struct {
	Name    string  `json:"name"`
	TaxID   *string `json:"taxId,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Note    *string `json:"note,omitempty"`
}

// UpdateClientInput carries the fields to change. Nil fields are untouched.
type UpdateClientInput struct {
	Name    *string `json:"name,omitempty"`
	TaxID   *string `json:"taxId,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Note    *string `json:"note,omitempty"`
}

// FindClientInput addresses a client by any unique field. ID wins over
// TaxID, which wins over Email.
type FindClientInput struct {
	ID    string `json:"id,omitempty"`
	TaxID string `json:"taxId,omitempty"`
	Email string `json:"email,omitempty"`
}

// ClientService is the command layer every transport calls into. Each method
// returns either a value or an *Error.
type ClientService struct {
	handle *repository.Handle
	logger *slog.Logger
}

func NewClientService(handle *repository.Handle, logger *slog.Logger) *ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientService{handle: handle, logger: logger.With("component", "client_service")}
}

// Handle exposes the shared store handle, mainly for readiness checks.
func (s *ClientService) Handle() *repository.Handle {
	return s.handle
}

func (s *ClientService) CreateClient(ctx context.Context, in CreateClientInput) (ClientView, error) {
	const op = "create_client"
	s.logger.DebugContext(ctx, "command started", "op", op)

	store, err := s.handle.Get(ctx)
	if err != nil {
		return ClientView{}, s.fail(ctx, op, classify(err, entityClient, ""))
	}

	client, err := store.Clients().Create(ctx, domain.ClientFields{
		Name:    in.Name,
		TaxID:   in.TaxID,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Note:    in.Note,
	})
	if err != nil {
		return ClientView{}, s.fail(ctx, op, classify(err, entityClient, ""))
	}

	s.logger.InfoContext(ctx, "client created", "op", op, "id", client.ID)
	return toClientView(client), nil
}

func (s *ClientService) ListClients(ctx context.Context) ([]ClientView, error) {
	const op = "list_clients"
	s.logger.DebugContext(ctx, "command started", "op", op)

	store, err := s.handle.Get(ctx)
	if err != nil {
		return nil, s.fail(ctx, op, classify(err, entityClient, ""))
	}

	clients, err := store.Clients().List(ctx)
	if err != nil {
		return nil, s.fail(ctx, op, classify(err, entityClient, ""))
	}

	views := make([]ClientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, toClientView(c))
	}
	s.logger.DebugContext(ctx, "clients listed", "op", op, "count", len(views))
	return views, nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (ClientView, error) {
	return s.find(ctx, "get_client", domain.ByID(id), id)
}

// FindClient resolves a client by ID, tax ID or email.
func (s *ClientService) FindClient(ctx context.Context, in FindClientInput) (ClientView, error) {
	key := domain.LookupKey{ID: in.ID, TaxID: in.TaxID, Email: in.Email}
	return s.find(ctx, "find_client", key, key.String())
}

func (s *ClientService) find(ctx context.Context, op string, key domain.LookupKey, id string) (ClientView, error) {
	s.logger.DebugContext(ctx, "command started", "op", op, "key", id)

	store, err := s.handle.Get(ctx)
	if err != nil {
		return ClientView{}, s.fail(ctx, op, classify(err, entityClient, id))
	}

	client, ok, err := store.Clients().FindByKey(ctx, key)
	if err != nil {
		return ClientView{}, s.fail(ctx, op, classify(err, entityClient, id))
	}
	if !ok {
		return ClientView{}, s.fail(ctx, op, NotFound(entityClient, id))
	}
	return toClientView(client), nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id string, in UpdateClientInput) (ClientView, error) {
	const op = "update_client"
	s.logger.DebugContext(ctx, "command started", "op", op, "id", id)

	store, err := s.handle.Get(ctx)
	if err != nil {
		return ClientView{}, s.fail(ctx, op, classify(err, entityClient, id))
	}

	client, err := store.Clients().Update(ctx, domain.ByID(id), domain.ClientPatch{
		Name:    in.Name,
		TaxID:   in.TaxID,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Note:    in.Note,
	})
	if err != nil {
		return ClientView{}, s.fail(ctx, op, classify(err, entityClient, id))
	}

	s.logger.InfoContext(ctx, "client updated", "op", op, "id", client.ID)
	return toClientView(client), nil
}

// DeleteClient removes the client and returns its ID as confirmation.
func (s *ClientService) DeleteClient(ctx context.Context, id string) (string, error) {
	const op = "delete_client"
	s.logger.DebugContext(ctx, "command started", "op", op, "id", id)

	store, err := s.handle.Get(ctx)
	if err != nil {
		return "", s.fail(ctx, op, classify(err, entityClient, id))
	}

	deleted, err := store.Clients().Delete(ctx, domain.ByID(id))
	if err != nil {
		return "", s.fail(ctx, op, classify(err, entityClient, id))
	}

	s.logger.InfoContext(ctx, "client deleted", "op", op, "id", deleted.ID)
	return deleted.ID, nil
}

func (s *ClientService) ListSettings(ctx context.Context) ([]SettingView, error) {
	const op = "list_settings"
	s.logger.DebugContext(ctx, "command started", "op", op)

	store, err := s.handle.Get(ctx)
	if err != nil {
		return nil, s.fail(ctx, op, classify(err, "setting", ""))
	}

	settings, err := store.Settings().List(ctx)
	if err != nil {
		return nil, s.fail(ctx, op, classify(err, "setting", ""))
	}

	views := make([]SettingView, 0, len(settings))
	for _, st := range settings {
		views = append(views, SettingView{
			ID:        st.ID,
			Key:       st.Key,
			Value:     st.Value,
			CreatedAt: formatTime(st.CreatedAt),
			UpdatedAt: formatTime(st.UpdatedAt),
		})
	}
	return views, nil
}

func (s *ClientService) fail(ctx context.Context, op string, e *Error) *Error {
	level := slog.LevelWarn
	if e.Kind == KindNotFound {
		level = slog.LevelInfo
	}
	s.logger.Log(ctx, level, "command failed", "op", op, "kind", e.Kind, "detail", e.Detail)
	return e
}

func toClientView(c domain.Client) ClientView {
	return ClientView{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Note:      c.Note,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
