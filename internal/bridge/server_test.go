package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/infrastructure/memory"
	"github.com/martijn/clientbook/internal/logging"
)

func socketPath(t *testing.T) string {
	t.Helper()
	// Unix socket paths are length-limited; t.TempDir can be too long.
	dir, err := os.MkdirTemp("", "cb")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "clientbook.sock")
}

func startServer(t *testing.T, processor RequestProcessor) *Client {
	t.Helper()
	path := socketPath(t)
	srv := NewServer(path, processor, logging.Discard())
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return NewClient(path, 5*time.Second)
}

func newClientService(t *testing.T) *service.ClientService {
	t.Helper()
	h := repository.NewHandle(func(context.Context) (repository.Store, error) { return memory.New(), nil })
	t.Cleanup(func() { _ = h.Close() })
	return service.NewClientService(h, logging.Discard())
}

func TestAnaSilvaOverBridge(t *testing.T) {
	client := startServer(t, NewClientProcessor(newClientService(t)))
	ctx := context.Background()

	var created service.ClientView
	require.NoError(t, client.Call(ctx, CmdCreateClient, map[string]any{"name": "Ana Silva", "email": "ana@x.com"}, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "ana@x.com", *created.Email)
	assert.Nil(t, created.TaxID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	var updated service.ClientView
	require.NoError(t, client.Call(ctx, CmdUpdateClient, map[string]any{"id": created.ID, "email": "ana2@x.com"}, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ana Silva", updated.Name)
	assert.Equal(t, "ana2@x.com", *updated.Email)
	createdAt, err := time.Parse(time.RFC3339Nano, updated.CreatedAt)
	require.NoError(t, err)
	updatedAt, err := time.Parse(time.RFC3339Nano, updated.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, updatedAt.After(createdAt))

	var deleted DeleteResult
	require.NoError(t, client.Call(ctx, CmdDeleteClient, map[string]any{"id": created.ID}, &deleted))
	assert.Equal(t, created.ID, deleted.ID)

	resp, err := client.SendCommand(ctx, CmdGetClient, map[string]any{"id": created.ID})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Not Found", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, service.KindNotFound, resp.Error.Kind)
	assert.Equal(t, "client", resp.Error.Entity)
	assert.Equal(t, created.ID, resp.Error.ID)

	err = client.Call(ctx, CmdGetClient, map[string]any{"id": created.ID}, nil)
	assert.True(t, service.IsKind(err, service.KindNotFound))
}

func TestListAndFindOverBridge(t *testing.T) {
	client := startServer(t, NewClientProcessor(newClientService(t)))
	ctx := context.Background()

	var clients []service.ClientView
	require.NoError(t, client.Call(ctx, CmdListClients, nil, &clients))
	assert.Empty(t, clients)

	require.NoError(t, client.Call(ctx, CmdCreateClient, map[string]any{"name": "Bruno", "taxId": "123"}, nil))

	var found service.ClientView
	require.NoError(t, client.Call(ctx, CmdFindClient, map[string]any{"taxId": "123"}, &found))
	assert.Equal(t, "Bruno", found.Name)

	require.NoError(t, client.Call(ctx, CmdListClients, nil, &clients))
	assert.Len(t, clients, 1)

	var settings []service.SettingView
	require.NoError(t, client.Call(ctx, CmdListSettings, nil, &settings))
	assert.Empty(t, settings)
}

func TestDuplicateIsConflict(t *testing.T) {
	client := startServer(t, NewClientProcessor(newClientService(t)))
	ctx := context.Background()

	require.NoError(t, client.Call(ctx, CmdCreateClient, map[string]any{"name": "A", "email": "a@x.com"}, nil))
	resp, err := client.SendCommand(ctx, CmdCreateClient, map[string]any{"name": "B", "email": "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, service.KindStorageFault, resp.Error.Kind)
}

func TestBadRequests(t *testing.T) {
	client := startServer(t, NewClientProcessor(newClientService(t)))
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  string
		args any
	}{
		{"unknown command", "drop_database", nil},
		{"missing command", "", nil},
		{"create without name", CmdCreateClient, map[string]any{"email": "x@x.com"}},
		{"get without id", CmdGetClient, map[string]any{}},
		{"update without id", CmdUpdateClient, map[string]any{"name": "X"}},
		{"delete without id", CmdDeleteClient, nil},
		{"find without key", CmdFindClient, map[string]any{}},
		{"args of wrong type", CmdGetClient, []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.SendCommand(ctx, tt.cmd, tt.args)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.NotEmpty(t, resp.Message)
			assert.Nil(t, resp.Error)

			var reqErr *RequestError
			err = client.Call(ctx, tt.cmd, tt.args, nil)
			assert.True(t, errors.As(err, &reqErr))
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	client := startServer(t, NewClientProcessor(newClientService(t)))

	conn, err := net.Dial("unix", client.socketPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(`{"cmd": "list_clients", `))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.UnixConn).CloseWrite())

	var resp Response
	require.NoError(t, json.NewDecoder(conn).Decode(&resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Message, "malformed request")
}

type panicProcessor struct{}

func (panicProcessor) ProcessRequest(context.Context, Request) Response {
	panic("boom")
}

func TestPanicBecomesUnknown(t *testing.T) {
	client := startServer(t, panicProcessor{})

	resp, err := client.SendCommand(context.Background(), CmdListClients, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, service.KindUnknown, resp.Error.Kind)

	// The server keeps serving after a panic.
	_, err = client.SendCommand(context.Background(), CmdPing, nil)
	assert.NoError(t, err)
}

func TestPingDoesNotOpenStore(t *testing.T) {
	svc := newClientService(t)
	client := startServer(t, NewClientProcessor(svc))
	ctx := context.Background()

	var ping PingResult
	require.NoError(t, client.Call(ctx, CmdPing, nil, &ping))
	assert.Equal(t, "ok", ping.Status)
	assert.False(t, ping.Opened)

	require.NoError(t, client.Call(ctx, CmdListClients, nil, nil))
	require.NoError(t, client.Call(ctx, CmdPing, nil, &ping))
	assert.True(t, ping.Opened)
}

func TestSocketPermissionsAndCleanup(t *testing.T) {
	path := socketPath(t)
	// A stale file from a previous run is replaced.
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	srv := NewServer(path, NewClientProcessor(newClientService(t)), logging.Discard())
	require.NoError(t, srv.Listen())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.NotZero(t, info.Mode()&os.ModeSocket)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	cancel()
	require.NoError(t, <-done)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestServeWithoutListen(t *testing.T) {
	srv := NewServer(socketPath(t), panicProcessor{}, logging.Discard())
	assert.Error(t, srv.Serve(context.Background()))
}

func TestClientDialFailure(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "missing.sock"), time.Second)
	_, err := client.SendCommand(context.Background(), CmdPing, nil)
	assert.Error(t, err)
}
