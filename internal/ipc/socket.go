package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"sync"

	"github.com/bnema/mousemux/internal/logger"
)

// ErrAlreadyRunning means another daemon is already serving the control
// socket.
var ErrAlreadyRunning = errors.New("mousemux is already running")

// MessageHandler serves decoded control requests.
type MessageHandler interface {
	Handle(req Request) Response
}

// SocketServer accepts control connections from the CLI. One daemon per
// user: starting on a socket with a live daemon behind it fails with
// ErrAlreadyRunning.
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    MessageHandler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// NewSocketServer creates a server bound to the per-user socket path.
func NewSocketServer(handler MessageHandler) (*SocketServer, error) {
	socketPath, err := SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get socket path: %w", err)
	}
	return &SocketServer{socketPath: socketPath, handler: handler}, nil
}

// Start begins accepting connections.
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// A stale socket file is cleaned up; a live one means a second
	// instance.
	if _, err := os.Stat(s.socketPath); err == nil {
		if pingSocket(s.socketPath) {
			return fmt.Errorf("%s: %w", s.socketPath, ErrAlreadyRunning)
		}
		if err := os.RemoveAll(s.socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	// User only
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("Control socket listening at %s", s.socketPath)
	return nil
}

// Stop closes the listener, waits for in-flight connections and removes
// the socket file.
func (s *SocketServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()

	_ = os.RemoveAll(s.socketPath)
	logger.Info("Control socket stopped")
}

func (s *SocketServer) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Errorf("Failed to accept connection: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

// handleConnection serves request/response pairs until the client hangs
// up. CLI clients send one request per connection; the loop costs nothing
// extra.
func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer func() { _ = conn.Close() }()

	logger.Debug("Control connection established")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req Request
		if err := readFrame(conn, &req); err != nil {
			logger.Debugf("Connection closed or read error: %v", err)
			return
		}

		var rsp Response
		if req.Command == CmdPing {
			rsp = Response{OK: true}
		} else {
			rsp = s.handler.Handle(req)
		}
		if err := writeFrame(conn, rsp); err != nil {
			logger.Errorf("Failed to send response: %v", err)
			return
		}
	}
}

// SocketPath returns the per-user control socket location.
func SocketPath() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "mousemux.sock"), nil
	}
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return filepath.Join("/tmp", fmt.Sprintf("mousemux-%s.sock", currentUser.Username)), nil
}

// pingSocket reports whether a daemon answers on path.
func pingSocket(path string) bool {
	c := &Client{socketPath: path, timeout: pingTimeout}
	return c.Ping() == nil
}
