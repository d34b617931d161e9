package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/infrastructure/memory"
	"github.com/martijn/clientbook/internal/logging"
)

// testEnv holds all test dependencies
type testEnv struct {
	router  *gin.Engine
	handle  *repository.Handle
	clients *service.ClientService
}

// setupTestEnv wires the handlers to an in-memory store. Routes are
// registered without the auth middleware.
func setupTestEnv(t *testing.T, settings ...domain.Setting) *testEnv {
	t.Helper()

	// Each write advances the clock by a millisecond so orderings are stable.
	base := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store := memory.New(settings...).WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	})

	handle := repository.NewHandle(func(context.Context) (repository.Store, error) { return store, nil })
	t.Cleanup(func() { _ = handle.Close() })

	clients := service.NewClientService(handle, logging.Discard())
	clientHandler := NewClientHandler(clients)
	settingHandler := NewSettingHandler(clients)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/clients", clientHandler.CreateClient)
	router.GET("/clients", clientHandler.ListClients)
	router.GET("/clients/lookup", clientHandler.LookupClient)
	router.GET("/clients/:id", clientHandler.GetClient)
	router.PUT("/clients/:id", clientHandler.UpdateClient)
	router.DELETE("/clients/:id", clientHandler.DeleteClient)
	router.GET("/settings", settingHandler.ListSettings)

	return &testEnv{router: router, handle: handle, clients: clients}
}

// do sends a JSON request and decodes the response body into out, if given.
func (env *testEnv) do(t *testing.T, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
	}
	return w
}

// seedClients creates clients through the service and returns their IDs in
// creation order.
func (env *testEnv) seedClients(t *testing.T, inputs ...service.CreateClientInput) []string {
	t.Helper()
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		view, err := env.clients.CreateClient(context.Background(), in)
		require.NoError(t, err)
		ids = append(ids, view.ID)
	}
	return ids
}

func strPtr(s string) *string { return &s }

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, "body: %s", w.Body.String())
}
