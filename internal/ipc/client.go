package ipc

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/input"
)

// ErrNotRunning means no daemon answers on the control socket.
var ErrNotRunning = errors.New("mousemux is not running")

const (
	requestTimeout = 5 * time.Second
	pingTimeout    = 500 * time.Millisecond
)

// Client talks to a running daemon. Each request opens its own
// connection, so a Client carries no state worth closing.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the per-user control socket.
func NewClient() (*Client, error) {
	socketPath, err := SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get socket path: %w", err)
	}
	return &Client{socketPath: socketPath, timeout: requestTimeout}, nil
}

// IsRunning reports whether a daemon currently answers the socket.
func IsRunning() bool {
	c, err := NewClient()
	if err != nil {
		return false
	}
	return c.Ping() == nil
}

// Ping checks daemon liveness.
func (c *Client) Ping() error {
	_, err := c.send(Request{Command: CmdPing})
	return err
}

// ScanDevices forces a device rescan and returns fresh descriptors.
func (c *Client) ScanDevices() ([]input.Info, error) {
	rsp, err := c.send(Request{Command: CmdScanDevices})
	if err != nil {
		return nil, err
	}
	return rsp.Devices, nil
}

// InspectStatus returns per-device liveness.
func (c *Client) InspectStatus() ([]input.StatusEntry, error) {
	rsp, err := c.send(Request{Command: CmdInspectStatus})
	if err != nil {
		return nil, err
	}
	return rsp.Statuses, nil
}

// ApplySetting pushes one device's policy change to the daemon.
func (c *Client) ApplySetting(item config.DeviceSettingItem) error {
	_, err := c.send(Request{Command: CmdApplySetting, Setting: &item})
	return err
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() error {
	_, err := c.send(Request{Command: CmdStop})
	return err
}

// send performs one request/response exchange on a fresh connection.
func (c *Client) send(req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return Response{}, fmt.Errorf("%w (dial %s: %v)", ErrNotRunning, c.socketPath, err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeFrame(conn, req); err != nil {
		return Response{}, err
	}
	var rsp Response
	if err := readFrame(conn, &rsp); err != nil {
		return Response{}, err
	}
	if !rsp.OK {
		return rsp, fmt.Errorf("daemon error: %s", rsp.Error)
	}
	return rsp, nil
}
