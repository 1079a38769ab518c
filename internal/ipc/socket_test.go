package ipc

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/input"
)

// recordingHandler answers from canned data and remembers what it saw.
type recordingHandler struct {
	requests []Request
	devices  []input.Info
	statuses []input.StatusEntry
	fail     error
}

func (h *recordingHandler) Handle(req Request) Response {
	h.requests = append(h.requests, req)
	if h.fail != nil {
		return ErrorResponse(h.fail)
	}
	switch req.Command {
	case CmdScanDevices:
		return Response{OK: true, Devices: h.devices}
	case CmdInspectStatus:
		return Response{OK: true, Statuses: h.statuses}
	case CmdApplySetting, CmdStop:
		return Response{OK: true}
	default:
		return ErrorResponse(errors.New("unknown command: " + req.Command))
	}
}

func startTestServer(t *testing.T, h MessageHandler) *Client {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	srv, err := NewSocketServer(h)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)

	c, err := NewClient()
	require.NoError(t, err)
	return c
}

func TestClientServerRoundTrip(t *testing.T) {
	h := &recordingHandler{
		devices: []input.Info{
			{ID: "usb-1/mouse", Type: input.TypeMouse, Name: "USB Mouse"},
			{ID: "usb-2/pen", Type: input.TypePen, Name: "Drawing Tablet"},
		},
		statuses: []input.StatusEntry{
			{ID: "usb-1/mouse", Status: input.Status{Kind: input.StatusActive, Positioning: input.PositioningRelative}},
			{ID: "usb-2/pen", Status: input.Status{Kind: input.StatusIdle}},
		},
	}
	c := startTestServer(t, h)

	require.NoError(t, c.Ping())

	devs, err := c.ScanDevices()
	require.NoError(t, err)
	require.Len(t, devs, 2)
	assert.Equal(t, "usb-1/mouse", devs[0].ID)
	assert.Equal(t, input.TypePen, devs[1].Type)

	statuses, err := c.InspectStatus()
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, input.StatusActive, statuses[0].Status.Kind)
	assert.Equal(t, input.PositioningRelative, statuses[0].Status.Positioning)

	locked := true
	require.NoError(t, c.ApplySetting(config.DeviceSettingItem{
		ID:              "usb-2/pen",
		LockedInMonitor: &locked,
	}))

	// Ping is answered by the server itself and never reaches the handler.
	require.Len(t, h.requests, 3)
	require.NotNil(t, h.requests[2].Setting)
	assert.Equal(t, "usb-2/pen", h.requests[2].Setting.ID)
	require.NotNil(t, h.requests[2].Setting.LockedInMonitor)
	assert.True(t, *h.requests[2].Setting.LockedInMonitor)
}

func TestHandlerErrorSurfacesToClient(t *testing.T) {
	h := &recordingHandler{fail: errors.New("enumeration refused")}
	c := startTestServer(t, h)

	_, err := c.ScanDevices()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enumeration refused")
}

func TestSecondInstanceRefused(t *testing.T) {
	h := &recordingHandler{}
	startTestServer(t, h)

	srv2, err := NewSocketServer(h)
	require.NoError(t, err)
	err = srv2.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestStaleSocketFileReplaced(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	// A leftover socket file nobody answers on must not block startup.
	path, err := SocketPath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, nil, 0600))

	srv, err := NewSocketServer(&recordingHandler{})
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	assert.True(t, IsRunning())
}

func TestClientWithoutServer(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	c, err := NewClient()
	require.NoError(t, err)
	err = c.Ping()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.False(t, IsRunning())
}
