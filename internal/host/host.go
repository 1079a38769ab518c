// Package host abstracts the platform capability surface: pointer device
// enumeration, raw input delivery, monitor topology, cursor control and
// global shortcuts. Backends push everything through one event stream so
// the processor drains input and notifications with the same bounded batch.
package host

import (
	"context"
	"fmt"

	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/hotkey"
	"github.com/bnema/mousemux/internal/input"
	"github.com/bnema/mousemux/internal/logger"
)

// Event is one host-delivered occurrence.
type Event interface {
	hostEvent()
}

// RawInput is a pointer report. Device is zero when the platform could not
// attribute the event to a device. Tick is the host's narrow millisecond
// counter; the processor widens it.
type RawInput struct {
	Device   input.Handle
	Pos      display.Pos
	Absolute bool
	Tick     uint64
}

// DeviceChange signals device arrival or removal. The processor responds
// with a rate-limited rescan.
type DeviceChange struct{}

// MonitorChange signals a topology or scale change.
type MonitorChange struct{}

// HotkeyPressed reports a registered combination being struck.
type HotkeyPressed struct {
	Shortcut hotkey.Shortcut
}

func (RawInput) hostEvent()      {}
func (DeviceChange) hostEvent()  {}
func (MonitorChange) hostEvent() {}
func (HotkeyPressed) hostEvent() {}

// Host is a platform backend. All methods except Start/Stop may be called
// only between them.
type Host interface {
	// Start begins event delivery. The event channel is created here and
	// stays valid until Stop.
	Start(ctx context.Context) error
	Stop() error

	// Events returns the stream the backend pushes into.
	Events() <-chan Event

	Devices() ([]input.Info, error)
	Monitors() ([]display.Monitor, error)

	CursorPos() (display.Pos, error)
	SetCursorPos(p display.Pos) error

	RegisterShortcut(id int, sc hotkey.Shortcut) error
	UnregisterShortcut(id int) error

	// NativeTick returns the host's narrow millisecond counter, the same
	// domain RawInput.Tick is stamped from.
	NativeTick() uint64
}

// Create picks the available backend.
func Create() (Host, error) {
	if IsEvdevAvailable() {
		logger.Info("Using evdev host backend")
		return NewEvdevHost()
	}
	return nil, fmt.Errorf("no suitable host backend: need read access to /dev/input/event*")
}
