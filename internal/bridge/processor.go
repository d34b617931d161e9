package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/martijn/clientbook/internal/core/service"
)

// RequestProcessor handles one decoded request.
type RequestProcessor interface {
	ProcessRequest(ctx context.Context, req Request) Response
}

// Commands understood by the client processor.
const (
	CmdCreateClient = "create_client"
	CmdListClients  = "list_clients"
	CmdGetClient    = "get_client"
	CmdUpdateClient = "update_client"
	CmdDeleteClient = "delete_client"
	CmdFindClient   = "find_client"
	CmdListSettings = "list_settings"
	CmdPing         = "ping"
)

// ClientProcessor routes bridge commands to the command layer.
type ClientProcessor struct {
	clients *service.ClientService
}

func NewClientProcessor(clients *service.ClientService) *ClientProcessor {
	return &ClientProcessor{clients: clients}
}

type idArgs struct {
	ID string `json:"id"`
}

type createArgs struct {
	Name    *string `json:"name"`
	TaxID   *string `json:"taxId"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Note    *string `json:"note"`
}

type updateArgs struct {
	ID string `json:"id"`
	service.UpdateClientInput
}

// PingResult reports whether the store has been opened yet.
type PingResult struct {
	Status string `json:"status"`
	Opened bool   `json:"opened"`
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	ID string `json:"id"`
}

func (p *ClientProcessor) ProcessRequest(ctx context.Context, req Request) Response {
	switch req.Cmd {
	case CmdPing:
		return success(PingResult{Status: "ok", Opened: p.clients.Handle().Opened()})

	case CmdListClients:
		return result(p.clients.ListClients(ctx))

	case CmdListSettings:
		return result(p.clients.ListSettings(ctx))

	case CmdCreateClient:
		var args createArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return badRequest(err.Error())
		}
		if args.Name == nil {
			return badRequest("missing required argument: name")
		}
		return result(p.clients.CreateClient(ctx, service.CreateClientInput{
			Name:    *args.Name,
			TaxID:   args.TaxID,
			Email:   args.Email,
			Phone:   args.Phone,
			Address: args.Address,
			Note:    args.Note,
		}))

	case CmdGetClient:
		id, resp, ok := requireID(req.Args)
		if !ok {
			return resp
		}
		return result(p.clients.GetClient(ctx, id))

	case CmdUpdateClient:
		var args updateArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return badRequest(err.Error())
		}
		if args.ID == "" {
			return badRequest("missing required argument: id")
		}
		return result(p.clients.UpdateClient(ctx, args.ID, args.UpdateClientInput))

	case CmdDeleteClient:
		id, resp, ok := requireID(req.Args)
		if !ok {
			return resp
		}
		deleted, err := p.clients.DeleteClient(ctx, id)
		return result(DeleteResult{ID: deleted}, err)

	case CmdFindClient:
		var args service.FindClientInput
		if err := decodeArgs(req.Args, &args); err != nil {
			return badRequest(err.Error())
		}
		if args.ID == "" && args.TaxID == "" && args.Email == "" {
			return badRequest("one of id, taxId or email is required")
		}
		return result(p.clients.FindClient(ctx, args))

	case "":
		return badRequest("missing command")

	default:
		return badRequest(fmt.Sprintf("unknown command: %s", req.Cmd))
	}
}

func result[T any](payload T, err error) Response {
	if err != nil {
		var e *service.Error
		if !errors.As(err, &e) {
			e = service.Unknown(err.Error())
		}
		return failure(e)
	}
	return success(payload)
}

func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid args: %w", err)
	}
	return nil
}

func requireID(raw json.RawMessage) (string, Response, bool) {
	var args idArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", badRequest(err.Error()), false
	}
	if args.ID == "" {
		return "", badRequest("missing required argument: id"), false
	}
	return args.ID, Response{}, true
}
