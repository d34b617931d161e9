package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/service"
)

func TestCreateAndGetClient(t *testing.T) {
	env := setupTestEnv(t)

	var created dto.ClientResponse
	w := env.do(t, http.MethodPost, "/clients", map[string]any{
		"name":   "Ana Silva",
		"email":  "ana@x.com",
		"tax_id": "123.456.789-00",
	}, &created)
	requireStatus(t, w, http.StatusCreated)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ana Silva", created.Name)
	assert.Equal(t, "ana@x.com", *created.Email)
	assert.Nil(t, created.Phone)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	var got dto.ClientResponse
	w = env.do(t, http.MethodGet, "/clients/"+created.ID, nil, &got)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, created, got)

	// Absent optional fields are omitted from the body.
	assert.NotContains(t, w.Body.String(), "phone")
}

func TestCreateClientValidation(t *testing.T) {
	env := setupTestEnv(t)

	var resp dto.ErrorResponse
	w := env.do(t, http.MethodPost, "/clients", map[string]any{"email": "x@x.com"}, &resp)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, resp.Kind)

	// A blank name reaches the store and is rejected there.
	w = env.do(t, http.MethodPost, "/clients", map[string]any{"name": "  "}, &resp)
	requireStatus(t, w, http.StatusInternalServerError)
	assert.Equal(t, string(service.KindStorageFault), resp.Kind)
}

func TestDuplicateEmailIsConflict(t *testing.T) {
	env := setupTestEnv(t)
	env.seedClients(t, service.CreateClientInput{Name: "A", Email: strPtr("a@x.com")})

	var resp dto.ErrorResponse
	w := env.do(t, http.MethodPost, "/clients", map[string]any{"name": "B", "email": "a@x.com"}, &resp)
	requireStatus(t, w, http.StatusConflict)
	assert.Equal(t, string(service.KindStorageFault), resp.Kind)
}

func TestUpdateClient(t *testing.T) {
	env := setupTestEnv(t)
	ids := env.seedClients(t, service.CreateClientInput{Name: "Ana Silva", Email: strPtr("ana@x.com"), Phone: strPtr("555")})

	var updated dto.ClientResponse
	w := env.do(t, http.MethodPut, "/clients/"+ids[0], map[string]any{"email": "ana2@x.com"}, &updated)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, ids[0], updated.ID)
	assert.Equal(t, "Ana Silva", updated.Name)
	assert.Equal(t, "ana2@x.com", *updated.Email)
	assert.Equal(t, "555", *updated.Phone)

	createdAt, err := time.Parse(time.RFC3339Nano, updated.CreatedAt)
	require.NoError(t, err)
	updatedAt, err := time.Parse(time.RFC3339Nano, updated.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, updatedAt.After(createdAt))
}

func TestMissingClientIsNotFound(t *testing.T) {
	env := setupTestEnv(t)
	env.seedClients(t, service.CreateClientInput{Name: "Keep"})
	const missing = "0190f1d2-0000-7000-8000-000000000000"

	tests := []struct {
		name   string
		method string
		body   any
	}{
		{"get", http.MethodGet, nil},
		{"update", http.MethodPut, map[string]any{"name": "X"}},
		{"delete", http.MethodDelete, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp dto.ErrorResponse
			w := env.do(t, tt.method, "/clients/"+missing, tt.body, &resp)
			requireStatus(t, w, http.StatusNotFound)
			assert.Equal(t, string(service.KindNotFound), resp.Kind)
			assert.Equal(t, "client", resp.Entity)
			assert.Equal(t, missing, resp.ID)
		})
	}

	var list dto.ClientListResponse
	env.do(t, http.MethodGet, "/clients", nil, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Keep", list.Items[0].Name)
}

func TestDeleteClient(t *testing.T) {
	env := setupTestEnv(t)
	ids := env.seedClients(t, service.CreateClientInput{Name: "Gone"})

	var deleted dto.DeleteClientResponse
	w := env.do(t, http.MethodDelete, "/clients/"+ids[0], nil, &deleted)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, ids[0], deleted.ID)

	w = env.do(t, http.MethodGet, "/clients/"+ids[0], nil, nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestLookupClient(t *testing.T) {
	env := setupTestEnv(t)
	ids := env.seedClients(t,
		service.CreateClientInput{Name: "Bruno", TaxID: strPtr("123")},
		service.CreateClientInput{Name: "Carla", Email: strPtr("carla@x.com")},
	)

	var found dto.ClientResponse
	requireStatus(t, env.do(t, http.MethodGet, "/clients/lookup?tax_id=123", nil, &found), http.StatusOK)
	assert.Equal(t, ids[0], found.ID)

	requireStatus(t, env.do(t, http.MethodGet, "/clients/lookup?email=carla@x.com", nil, &found), http.StatusOK)
	assert.Equal(t, ids[1], found.ID)

	requireStatus(t, env.do(t, http.MethodGet, "/clients/lookup?email=nobody@x.com", nil, nil), http.StatusNotFound)
	requireStatus(t, env.do(t, http.MethodGet, "/clients/lookup", nil, nil), http.StatusBadRequest)
}

func TestListClientsEmpty(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/clients", nil, nil)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"items":[],"pagination":{"total":0,"page":1,"per_page":25,"total_pages":0}}`, w.Body.String())
}

func TestListClientsFilterOrderAndPage(t *testing.T) {
	env := setupTestEnv(t)
	env.seedClients(t,
		service.CreateClientInput{Name: "Carla", Email: strPtr("carla@x.com")},
		service.CreateClientInput{Name: "Ana Silva", Email: strPtr("ana@x.com")},
		service.CreateClientInput{Name: "Bruno"},
		service.CreateClientInput{Name: "Dora Silva"},
	)

	names := func(list dto.ClientListResponse) []string {
		out := make([]string, len(list.Items))
		for i, item := range list.Items {
			out[i] = item.Name
		}
		return out
	}

	var list dto.ClientListResponse
	requireStatus(t, env.do(t, http.MethodGet, "/clients", nil, &list), http.StatusOK)
	assert.Equal(t, []string{"Carla", "Ana Silva", "Bruno", "Dora Silva"}, names(list))

	requireStatus(t, env.do(t, http.MethodGet, "/clients?order=name|asc", nil, &list), http.StatusOK)
	assert.Equal(t, []string{"Ana Silva", "Bruno", "Carla", "Dora Silva"}, names(list))

	requireStatus(t, env.do(t, http.MethodGet, "/clients?order=created_at|desc", nil, &list), http.StatusOK)
	assert.Equal(t, []string{"Dora Silva", "Bruno", "Ana Silva", "Carla"}, names(list))

	requireStatus(t, env.do(t, http.MethodGet, "/clients?query=name|contains|silva", nil, &list), http.StatusOK)
	assert.Equal(t, []string{"Ana Silva", "Dora Silva"}, names(list))

	requireStatus(t, env.do(t, http.MethodGet, "/clients?query=email|isnull", nil, &list), http.StatusOK)
	assert.Equal(t, []string{"Bruno", "Dora Silva"}, names(list))

	requireStatus(t, env.do(t, http.MethodGet, "/clients?order=name|asc&page=2&per_page=3", nil, &list), http.StatusOK)
	assert.Equal(t, []string{"Dora Silva"}, names(list))
	assert.Equal(t, dto.PaginationInfo{Total: 4, Page: 2, PerPage: 3, TotalPages: 2}, list.Pagination)
}

func TestListClientsRejectsBadParams(t *testing.T) {
	env := setupTestEnv(t)

	for _, path := range []string{
		"/clients?query=password|x",
		"/clients?query=name|like|x",
		"/clients?order=email|asc",
		"/clients?order=name|sideways",
	} {
		t.Run(path, func(t *testing.T) {
			requireStatus(t, env.do(t, http.MethodGet, path, nil, nil), http.StatusBadRequest)
		})
	}
}

func TestListSettings(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	env := setupTestEnv(t,
		domain.Setting{ID: "2", Key: "theme", Value: "dark", CreatedAt: now, UpdatedAt: now},
		domain.Setting{ID: "1", Key: "locale", Value: "pt-BR", CreatedAt: now, UpdatedAt: now},
	)

	var list dto.SettingListResponse
	requireStatus(t, env.do(t, http.MethodGet, "/settings", nil, &list), http.StatusOK)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "locale", list.Items[0].Key)
	assert.Equal(t, "pt-BR", list.Items[0].Value)
	assert.Equal(t, "2025-01-02T03:04:05Z", list.Items[0].CreatedAt)
}

func TestClosedStoreIsUnknown(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.handle.Close())

	var resp dto.ErrorResponse
	w := env.do(t, http.MethodGet, "/clients", nil, &resp)
	requireStatus(t, w, http.StatusInternalServerError)
	assert.Equal(t, string(service.KindUnknown), resp.Kind)
}
