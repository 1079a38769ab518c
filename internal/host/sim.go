package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/hotkey"
	"github.com/bnema/mousemux/internal/input"
)

// Sim is a fully scriptable in-memory Host. The daemon never uses it; it
// exists so the event processor can be driven deterministically, with a
// hand-cranked clock and device/monitor sets that change on demand.
type Sim struct {
	mu       sync.Mutex
	started  bool
	events   chan Event
	devices  []input.Info
	monitors []display.Monitor
	cur      display.Pos
	tick     uint64

	armed        map[hotkey.Shortcut]int
	registerErr  error
	devicesErr   error
	monitorsErr  error
	setCursorErr error

	warps []display.Pos
	scans int
}

func NewSim() *Sim {
	return &Sim{
		events: make(chan Event, 1024),
		armed:  make(map[hotkey.Shortcut]int),
	}
}

func (s *Sim) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *Sim) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return nil
}

func (s *Sim) Events() <-chan Event { return s.events }

func (s *Sim) Devices() ([]input.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
	if s.devicesErr != nil {
		return nil, s.devicesErr
	}
	out := make([]input.Info, len(s.devices))
	copy(out, s.devices)
	return out, nil
}

func (s *Sim) Monitors() ([]display.Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.monitorsErr != nil {
		return nil, s.monitorsErr
	}
	out := make([]display.Monitor, len(s.monitors))
	copy(out, s.monitors)
	return out, nil
}

func (s *Sim) CursorPos() (display.Pos, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur, nil
}

func (s *Sim) SetCursorPos(p display.Pos) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setCursorErr != nil {
		return s.setCursorErr
	}
	s.cur = p
	s.warps = append(s.warps, p)
	return nil
}

func (s *Sim) RegisterShortcut(id int, sc hotkey.Shortcut) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registerErr != nil {
		err := s.registerErr
		s.registerErr = nil
		return err
	}
	if owner, ok := s.armed[sc]; ok && owner != id {
		return fmt.Errorf("%s: %w", sc, hotkey.ErrConflict)
	}
	for old, owner := range s.armed {
		if owner == id && old != sc {
			delete(s.armed, old)
		}
	}
	s.armed[sc] = id
	return nil
}

func (s *Sim) UnregisterShortcut(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sc, owner := range s.armed {
		if owner == id {
			delete(s.armed, sc)
		}
	}
	return nil
}

func (s *Sim) NativeTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Script surface, used by tests only.

// Advance moves the simulated clock forward by ms milliseconds.
func (s *Sim) Advance(ms uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick += ms
}

// SetDevices replaces the enumeration result of the next Devices call.
func (s *Sim) SetDevices(devices ...input.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = append([]input.Info(nil), devices...)
}

// SetMonitors replaces the enumeration result of the next Monitors call.
func (s *Sim) SetMonitors(monitors ...display.Monitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitors = append([]display.Monitor(nil), monitors...)
}

// FailNextRegister makes the next RegisterShortcut call return err.
func (s *Sim) FailNextRegister(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerErr = err
}

// FailDevices makes Devices return err until cleared with nil.
func (s *Sim) FailDevices(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devicesErr = err
}

// PushRaw emits a positioned report stamped with the simulated clock.
func (s *Sim) PushRaw(device input.Handle, p display.Pos, absolute bool) {
	s.mu.Lock()
	t := s.tick
	s.cur = p
	s.mu.Unlock()
	s.events <- RawInput{Device: device, Pos: p, Absolute: absolute, Tick: t}
}

// PushDeviceChange emits a hotplug notification.
func (s *Sim) PushDeviceChange() {
	s.events <- DeviceChange{}
}

// PushMonitorChange emits a topology notification.
func (s *Sim) PushMonitorChange() {
	s.events <- MonitorChange{}
}

// PressHotkey emits a hotkey press if the combination is armed. It reports
// whether anything was emitted.
func (s *Sim) PressHotkey(sc hotkey.Shortcut) bool {
	s.mu.Lock()
	_, armed := s.armed[sc]
	s.mu.Unlock()
	if !armed {
		return false
	}
	s.events <- HotkeyPressed{Shortcut: sc}
	return true
}

// Warps returns every position handed to SetCursorPos, oldest first.
func (s *Sim) Warps() []display.Pos {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]display.Pos(nil), s.warps...)
}

// LastWarp returns the most recent warp, if any.
func (s *Sim) LastWarp() (display.Pos, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.warps) == 0 {
		return display.Pos{}, false
	}
	return s.warps[len(s.warps)-1], true
}

// ClearWarps drops the recorded warp history.
func (s *Sim) ClearWarps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warps = nil
}

// Scans returns how many times Devices has been called.
func (s *Sim) Scans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans
}

// ArmedShortcut returns the combination bound to id, if any.
func (s *Sim) ArmedShortcut(id int) (hotkey.Shortcut, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sc, owner := range s.armed {
		if owner == id {
			return sc, true
		}
	}
	return hotkey.Shortcut{}, false
}
