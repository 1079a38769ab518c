package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	evdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/hotkey"
	"github.com/bnema/mousemux/internal/input"
	"github.com/bnema/mousemux/internal/logger"
	"github.com/bnema/mousemux/internal/tick"
)

const eventBuffer = 256

// axisSpan is one absolute axis range as the device reports it.
type axisSpan struct {
	min, max int32
}

// scale maps a raw axis value onto [lo, hi].
func (s axisSpan) scale(v int32, lo, hi int32) int32 {
	span := int64(s.max) - int64(s.min)
	if span <= 0 {
		return lo
	}
	if v < s.min {
		v = s.min
	} else if v > s.max {
		v = s.max
	}
	return lo + int32(int64(v-s.min)*int64(hi-lo)/span)
}

// deviceReader owns one open device node and the goroutine draining it.
type deviceReader struct {
	handle   input.Handle
	path     string
	dev      *evdev.InputDevice
	info     input.Info
	keyboard bool
	abs      bool
	axisX    axisSpan
	axisY    axisSpan
}

func (r *deviceReader) close() {
	if r.dev != nil && r.dev.File != nil {
		_ = r.dev.File.Close()
	}
}

// EvdevHost reads pointer and keyboard devices from /dev/input, queries the
// compositor for monitor topology and warps the cursor through a virtual
// uinput pointer. Devices are observed, never grabbed: events keep flowing
// to the compositor unchanged.
//
// Relative devices are composed onto a virtual cursor clamped to the layout
// bounding box; absolute devices are scaled onto the same box. The composed
// position tracks the real cursor well enough for per-device policies, and
// warping resynchronizes the two.
type EvdevHost struct {
	mu         sync.Mutex
	started    bool
	ctx        context.Context
	cancel     context.CancelFunc
	events     chan Event
	readers    map[string]*deviceReader
	nextHandle input.Handle
	watcher    *fsnotify.Watcher
	pad        *warpPad

	compositor string

	posMu      sync.Mutex
	cur        display.Pos
	seeded     bool
	bounds     display.MonitorArea
	haveBounds bool

	trackMu sync.Mutex
	tracker comboTracker
	armed   map[hotkey.Shortcut]int
}

// IsEvdevAvailable reports whether input device nodes can be enumerated.
func IsEvdevAvailable() bool {
	if _, err := os.Stat("/dev/input"); os.IsNotExist(err) {
		return false
	}
	devices, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return false
	}
	for _, dev := range devices {
		if dev.File != nil {
			_ = dev.File.Close()
		}
	}
	return len(devices) > 0
}

func NewEvdevHost() (*EvdevHost, error) {
	compositor := detectCompositor()
	if compositor == "" {
		logger.Warn("No supported compositor detected, monitor queries fall back to wlr-randr")
	} else {
		logger.Info("Detected compositor", "compositor", compositor)
	}
	return &EvdevHost{
		readers:    make(map[string]*deviceReader),
		nextHandle: input.PseudoHandle + 1,
		armed:      make(map[hotkey.Shortcut]int),
		compositor: compositor,
	}, nil
}

func (e *EvdevHost) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return fmt.Errorf("host already started")
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.events = make(chan Event, eventBuffer)
	e.started = true
	e.mu.Unlock()

	if _, err := e.Monitors(); err != nil {
		logger.Warnf("Monitor enumeration failed: %v", err)
	}
	if _, err := e.Devices(); err != nil {
		_ = e.Stop()
		return err
	}

	if watcher, err := fsnotify.NewWatcher(); err != nil {
		logger.Warnf("inotify unavailable, device hotplug needs manual rescans: %v", err)
	} else if err := watcher.Add("/dev/input"); err != nil {
		logger.Warnf("Cannot watch /dev/input: %v", err)
		_ = watcher.Close()
	} else {
		e.mu.Lock()
		e.watcher = watcher
		e.mu.Unlock()
		go e.watchDeviceNodes(watcher)
	}

	watchMonitors(e.ctx, e.compositor, func() {
		e.push(MonitorChange{})
	})
	return nil
}

func (e *EvdevHost) Stop() error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = false
	cancel := e.cancel
	watcher := e.watcher
	e.watcher = nil
	readers := e.readers
	e.readers = make(map[string]*deviceReader)
	pad := e.pad
	e.pad = nil
	e.mu.Unlock()

	cancel()
	if watcher != nil {
		_ = watcher.Close()
	}
	// Closing the node unblocks any reader stuck in a read.
	for _, r := range readers {
		r.close()
	}
	if pad != nil {
		pad.close()
	}
	return nil
}

func (e *EvdevHost) Events() <-chan Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events
}

// push delivers an event without ever blocking a capture goroutine. When
// the consumer is behind, the event is dropped.
func (e *EvdevHost) push(ev Event) {
	e.mu.Lock()
	ch := e.events
	started := e.started
	e.mu.Unlock()
	if !started || ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

// Devices enumerates pointer devices and reconciles the reader set: new
// nodes get a reader, nodes already tracked keep their handle. Removed
// nodes clean themselves up when their reader hits a read error.
func (e *EvdevHost) Devices() ([]input.Info, error) {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return nil, fmt.Errorf("host not started")
	}
	e.mu.Unlock()

	devices, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	infos := make([]input.Info, 0, len(devices))
	for _, dev := range devices {
		if r, ok := e.readers[dev.Fn]; ok {
			// Enumeration opened a second handle on a tracked node.
			if dev.File != nil {
				_ = dev.File.Close()
			}
			if !r.keyboard {
				infos = append(infos, r.info)
			}
			continue
		}

		page, usage := usagePairFor(dev.CapabilitiesFlat)
		typ := input.TypeFromHIDUsage(page, usage)
		switch {
		case typ.IsPointer():
			r := e.trackPointerLocked(dev, typ)
			infos = append(infos, r.info)
		case typ == input.TypeKeyboard || typ == input.TypeKeypad:
			e.trackKeyboardLocked(dev)
		default:
			if dev.File != nil {
				_ = dev.File.Close()
			}
		}
	}
	return infos, nil
}

func (e *EvdevHost) trackPointerLocked(dev *evdev.InputDevice, typ input.DeviceType) *deviceReader {
	r := &deviceReader{
		handle: e.nextHandle,
		path:   dev.Fn,
		dev:    dev,
	}
	e.nextHandle++

	r.info = input.Info{
		ID:      stableDeviceID(dev.Fn, dev.Name),
		Handle:  r.handle,
		Type:    typ,
		Name:    dev.Name,
		Product: sysfsProduct(dev.Fn),
		Properties: map[string]string{
			"path": dev.Fn,
		},
	}

	if hasAbsAxes(dev) {
		xMin, xMax, errX := absRange(dev.Fn, evdev.ABS_X)
		yMin, yMax, errY := absRange(dev.Fn, evdev.ABS_Y)
		if errX == nil && errY == nil {
			r.abs = true
			r.axisX = axisSpan{min: xMin, max: xMax}
			r.axisY = axisSpan{min: yMin, max: yMax}
		} else {
			logger.Warnf("Cannot read axis ranges for %s, treating as relative: %v %v", dev.Name, errX, errY)
		}
	}

	e.readers[dev.Fn] = r
	go e.runReader(r)
	logger.Debug("Tracking pointer device", "name", dev.Name, "path", dev.Fn, "type", typ.String())
	return r
}

func (e *EvdevHost) trackKeyboardLocked(dev *evdev.InputDevice) {
	r := &deviceReader{
		handle:   e.nextHandle,
		path:     dev.Fn,
		dev:      dev,
		keyboard: true,
		info:     input.Info{Handle: e.nextHandle, Type: input.TypeKeyboard, Name: dev.Name},
	}
	e.nextHandle++
	e.readers[dev.Fn] = r
	go e.runReader(r)
	logger.Debug("Tracking keyboard", "name", dev.Name, "path", dev.Fn)
}

func hasAbsAxes(dev *evdev.InputDevice) bool {
	var x, y bool
	for _, a := range dev.CapabilitiesFlat[evdev.EV_ABS] {
		switch a {
		case evdev.ABS_X:
			x = true
		case evdev.ABS_Y:
			y = true
		}
	}
	return x && y
}

func (e *EvdevHost) dropReader(r *deviceReader) {
	e.mu.Lock()
	if cur, ok := e.readers[r.path]; ok && cur == r {
		delete(e.readers, r.path)
	}
	e.mu.Unlock()
	r.close()
}

// runReader drains one device. Pointer devices are composed into positioned
// reports on SYN_REPORT boundaries; keyboards feed the shortcut tracker.
func (e *EvdevHost) runReader(r *deviceReader) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("Reader for %s panicked: %v", r.info.Name, rec)
		}
	}()

	var (
		dx, dy     int32
		absX, absY int32
		absDirty   bool
		clicked    bool
	)

	for {
		select {
		case <-e.ctx.Done():
			return
		default:
		}

		events, err := r.dev.Read()
		if err != nil {
			select {
			case <-e.ctx.Done():
				return
			default:
			}
			if strings.Contains(err.Error(), "resource temporarily unavailable") {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			logger.Debugf("Device %s went away: %v", r.info.Name, err)
			e.dropReader(r)
			e.push(DeviceChange{})
			return
		}

		for _, ev := range events {
			switch ev.Type {
			case evdev.EV_KEY:
				if r.keyboard {
					if sc, ok := e.trackKey(ev.Code, ev.Value); ok {
						e.push(HotkeyPressed{Shortcut: sc})
					}
					continue
				}
				if ev.Value == 1 {
					clicked = true
				}
			case evdev.EV_REL:
				switch ev.Code {
				case evdev.REL_X:
					dx += ev.Value
				case evdev.REL_Y:
					dy += ev.Value
				}
			case evdev.EV_ABS:
				switch ev.Code {
				case evdev.ABS_X:
					absX = ev.Value
					absDirty = true
				case evdev.ABS_Y:
					absY = ev.Value
					absDirty = true
				}
			case evdev.EV_SYN:
				if ev.Code != evdev.SYN_REPORT || r.keyboard {
					continue
				}
				switch {
				case r.abs && absDirty:
					pos := e.composeAbs(r, absX, absY)
					e.push(RawInput{Device: r.handle, Pos: pos, Absolute: true, Tick: e.NativeTick()})
				case dx != 0 || dy != 0:
					pos := e.composeRel(dx, dy)
					e.push(RawInput{Device: r.handle, Pos: pos, Absolute: false, Tick: e.NativeTick()})
				case clicked:
					// A press without motion still tells us which device
					// the user is holding.
					e.push(RawInput{Device: r.handle, Pos: e.currentPos(), Absolute: false, Tick: e.NativeTick()})
				}
				dx, dy = 0, 0
				absDirty = false
				clicked = false
			}
		}
	}
}

func (e *EvdevHost) composeRel(dx, dy int32) display.Pos {
	e.posMu.Lock()
	defer e.posMu.Unlock()
	p := display.Pos{X: e.cur.X + dx, Y: e.cur.Y + dy}
	if e.haveBounds {
		p = e.bounds.CapturePos(p)
	}
	e.cur = p
	e.seeded = true
	return p
}

func (e *EvdevHost) composeAbs(r *deviceReader, x, y int32) display.Pos {
	e.posMu.Lock()
	defer e.posMu.Unlock()
	b := e.bounds
	if !e.haveBounds {
		b = display.MonitorArea{RightBottom: display.Pos{X: 1, Y: 1}}
	}
	p := display.Pos{
		X: r.axisX.scale(x, b.LeftTop.X, b.RightBottom.X-1),
		Y: r.axisY.scale(y, b.LeftTop.Y, b.RightBottom.Y-1),
	}
	e.cur = p
	e.seeded = true
	return p
}

func (e *EvdevHost) currentPos() display.Pos {
	e.posMu.Lock()
	defer e.posMu.Unlock()
	return e.cur
}

func (e *EvdevHost) watchDeviceNodes(w *fsnotify.Watcher) {
	for {
		select {
		case <-e.ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), "event") {
				continue
			}
			if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) {
				e.push(DeviceChange{})
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Debugf("Device watch error: %v", err)
		}
	}
}

func (e *EvdevHost) Monitors() ([]display.Monitor, error) {
	monitors, err := compositorMonitors(e.compositor)
	if err != nil {
		return nil, err
	}
	e.adoptTopology(monitors)
	return monitors, nil
}

// adoptTopology refreshes the composition bounds and the warp device after
// a successful monitor enumeration.
func (e *EvdevHost) adoptTopology(monitors []display.Monitor) {
	bounds, ok := unionBounds(monitors)
	if !ok {
		return
	}

	e.posMu.Lock()
	e.bounds = bounds
	e.haveBounds = true
	if !e.seeded {
		if p, err := compositorCursorPos(e.compositor); err == nil {
			e.cur = p
		} else {
			e.cur = bounds.Center()
		}
		e.seeded = true
	}
	e.posMu.Unlock()

	e.mu.Lock()
	pad := e.pad
	started := e.started
	e.mu.Unlock()
	if !started {
		return
	}
	if pad == nil {
		created, err := newWarpPad(monitors)
		if err != nil {
			logger.Warnf("Virtual pointer unavailable, cursor warping disabled: %v", err)
			return
		}
		e.mu.Lock()
		if e.started && e.pad == nil {
			e.pad = created
		} else {
			created.close()
		}
		e.mu.Unlock()
		return
	}
	if err := pad.retarget(monitors); err != nil {
		logger.Warnf("Virtual pointer retarget failed: %v", err)
	}
}

func (e *EvdevHost) CursorPos() (display.Pos, error) {
	if p, err := compositorCursorPos(e.compositor); err == nil {
		e.posMu.Lock()
		e.cur = p
		e.seeded = true
		e.posMu.Unlock()
		return p, nil
	}
	e.posMu.Lock()
	defer e.posMu.Unlock()
	if !e.seeded {
		return display.Pos{}, fmt.Errorf("cursor position unknown")
	}
	return e.cur, nil
}

func (e *EvdevHost) SetCursorPos(p display.Pos) error {
	e.mu.Lock()
	pad := e.pad
	e.mu.Unlock()
	if pad == nil {
		return fmt.Errorf("virtual pointer unavailable")
	}
	if err := pad.moveTo(p); err != nil {
		return err
	}
	e.posMu.Lock()
	e.cur = p
	e.seeded = true
	e.posMu.Unlock()
	return nil
}

// RegisterShortcut arms a combination. A combination armed for a different
// id is rejected, mirroring how OS-level registries behave.
func (e *EvdevHost) RegisterShortcut(id int, sc hotkey.Shortcut) error {
	e.trackMu.Lock()
	defer e.trackMu.Unlock()
	if owner, ok := e.armed[sc]; ok && owner != id {
		return fmt.Errorf("%s: %w", sc, hotkey.ErrConflict)
	}
	for old, owner := range e.armed {
		if owner == id && old != sc {
			delete(e.armed, old)
		}
	}
	e.armed[sc] = id
	return nil
}

func (e *EvdevHost) UnregisterShortcut(id int) error {
	e.trackMu.Lock()
	defer e.trackMu.Unlock()
	for sc, owner := range e.armed {
		if owner == id {
			delete(e.armed, sc)
		}
	}
	return nil
}

func (e *EvdevHost) trackKey(code uint16, value int32) (hotkey.Shortcut, bool) {
	e.trackMu.Lock()
	defer e.trackMu.Unlock()
	sc, ok := e.tracker.handleKey(code, value)
	if !ok {
		return hotkey.Shortcut{}, false
	}
	if _, armed := e.armed[sc]; !armed {
		return hotkey.Shortcut{}, false
	}
	return sc, true
}

func (e *EvdevHost) NativeTick() uint64 {
	return tick.UptimeMillis() & 0xFFFFFFFF
}
