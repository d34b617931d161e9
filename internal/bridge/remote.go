package bridge

import (
	"context"

	"github.com/martijn/clientbook/internal/core/service"
)

// The methods below mirror service.ClientService so callers can switch
// between an in-process service and a running bridge.

func (c *Client) CreateClient(ctx context.Context, in service.CreateClientInput) (service.ClientView, error) {
	var view service.ClientView
	err := c.Call(ctx, CmdCreateClient, in, &view)
	return view, err
}

func (c *Client) ListClients(ctx context.Context) ([]service.ClientView, error) {
	views := []service.ClientView{}
	err := c.Call(ctx, CmdListClients, nil, &views)
	return views, err
}

func (c *Client) GetClient(ctx context.Context, id string) (service.ClientView, error) {
	var view service.ClientView
	err := c.Call(ctx, CmdGetClient, idArgs{ID: id}, &view)
	return view, err
}

func (c *Client) FindClient(ctx context.Context, in service.FindClientInput) (service.ClientView, error) {
	var view service.ClientView
	err := c.Call(ctx, CmdFindClient, in, &view)
	return view, err
}

func (c *Client) UpdateClient(ctx context.Context, id string, in service.UpdateClientInput) (service.ClientView, error) {
	var view service.ClientView
	err := c.Call(ctx, CmdUpdateClient, updateArgs{ID: id, UpdateClientInput: in}, &view)
	return view, err
}

func (c *Client) DeleteClient(ctx context.Context, id string) (string, error) {
	var res DeleteResult
	err := c.Call(ctx, CmdDeleteClient, idArgs{ID: id}, &res)
	return res.ID, err
}

func (c *Client) ListSettings(ctx context.Context) ([]service.SettingView, error) {
	views := []service.SettingView{}
	err := c.Call(ctx, CmdListSettings, nil, &views)
	return views, err
}

// Ping reports whether the bridge is up and whether its store is open.
func (c *Client) Ping(ctx context.Context) (PingResult, error) {
	var res PingResult
	err := c.Call(ctx, CmdPing, nil, &res)
	return res, err
}
