// Package ipc carries control traffic between the CLI and a running
// daemon over a unix socket. Frames are length-prefixed JSON: 4 bytes of
// big-endian payload length, then the payload.
package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/input"
)

// Commands understood by the daemon.
const (
	CmdPing          = "ping"
	CmdScanDevices   = "scan-devices"
	CmdInspectStatus = "inspect-status"
	CmdApplySetting  = "apply-setting"
	CmdStop          = "stop"
)

// maxFrameSize caps incoming payloads. Control traffic is tiny; anything
// bigger is a corrupt frame.
const maxFrameSize = 1 << 20

// Request is one CLI command. Setting is present only for CmdApplySetting.
type Request struct {
	Command string                    `json:"command"`
	Setting *config.DeviceSettingItem `json:"setting,omitempty"`
}

// Response answers one Request. At most one payload field is set, matching
// the command; Error is set when OK is false.
type Response struct {
	OK       bool                `json:"ok"`
	Error    string              `json:"error,omitempty"`
	Devices  []input.Info        `json:"devices,omitempty"`
	Statuses []input.StatusEntry `json:"statuses,omitempty"`
}

// ErrorResponse builds a failure response from err.
func ErrorResponse(err error) Response {
	return Response{Error: err.Error()}
}

func writeFrame(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("failed to write frame length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write frame data: %w", err)
	}
	return nil
}

func readFrame(r io.Reader, v any) error {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return fmt.Errorf("failed to read frame length: %w", err)
	}
	if length > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit", length)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("failed to read frame data: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal frame: %w", err)
	}
	return nil
}
