package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/logging"
)

const (
	connTimeout    = 30 * time.Second
	maxMessageSize = 1024 * 1024 // 1MB
)

// Server accepts one JSON request per unix-socket connection and replies with
// one JSON response.
type Server struct {
	socketPath string
	processor  RequestProcessor
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    sync.WaitGroup
}

func NewServer(socketPath string, processor RequestProcessor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		processor:  processor,
		logger:     logger.With("component", "bridge"),
	}
}

// Listen creates the socket. It replaces a stale socket file left by a
// previous run.
func (s *Server) Listen() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("socket server listening", "path", s.socketPath)
	return nil
}

// Serve accepts connections until ctx is cancelled, then waits for in-flight
// requests and removes the socket file.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("bridge: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Warn("failed to accept connection", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(context.WithoutCancel(ctx), conn)
		}()
	}

	s.conns.Wait()
	_ = os.Remove(s.socketPath)
	s.logger.Info("socket server stopped", "path", s.socketPath)
	return nil
}

// Start is Listen followed by Serve.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(connTimeout))

	reqID := logging.NewRequestID()
	logger := s.logger.With("req_id", reqID)
	ctx = logging.WithContext(ctx, logger)

	var req Request
	dec := json.NewDecoder(io.LimitReader(conn, maxMessageSize))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		s.sendResponse(logger, conn, badRequest("malformed request: "+err.Error()))
		return
	}

	start := time.Now()
	response := s.process(ctx, req)
	logger.Info("bridge_command",
		"cmd", req.Cmd,
		"code", response.Code,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.sendResponse(logger, conn, response)
}

// process runs the processor and turns a panic into an unknown error.
func (s *Server) process(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Error("panic while processing command", "cmd", req.Cmd, "panic", r)
			resp = failure(service.Unknown(fmt.Sprintf("internal error processing %s", req.Cmd)))
		}
	}()
	return s.processor.ProcessRequest(ctx, req)
}

func (s *Server) sendResponse(logger *slog.Logger, conn net.Conn, response Response) {
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		logger.Warn("failed to send response", "error", err)
	}
}
