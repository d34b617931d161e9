package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"
)

// Client sends commands to a running bridge server.
type Client struct {
	socketPath string
	timeout    time.Duration
}

func NewClient(socketPath string, timeout time.Duration) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
	}
}

// RequestError is a request the server refused before reaching the command
// layer.
type RequestError struct {
	Code    int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("bridge rejected request (%d): %s", e.Code, e.Message)
}

// SendCommand sends one command and returns the raw response.
func (c *Client) SendCommand(ctx context.Context, cmd string, args any) (*Response, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	req := Request{Cmd: cmd}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal args: %w", err)
		}
		req.Args = raw
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var response Response
	if err := json.NewDecoder(io.LimitReader(conn, maxMessageSize)).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &response, nil
}

// Call sends a command and decodes the payload into out. Command-layer
// failures come back as *service.Error and refused requests as *RequestError.
func (c *Client) Call(ctx context.Context, cmd string, args any, out any) error {
	resp, err := c.SendCommand(ctx, cmd, args)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if resp.Code >= 400 {
		return &RequestError{Code: resp.Code, Message: resp.Message}
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
