// Package processor owns the event loop at the center of the daemon: it
// drives the relocation engine from host input, reconciles device and
// monitor churn, and answers the control surface.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/cursor"
	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/host"
	"github.com/bnema/mousemux/internal/hotkey"
	"github.com/bnema/mousemux/internal/input"
	"github.com/bnema/mousemux/internal/logger"
	"github.com/bnema/mousemux/internal/reactor"
	"github.com/bnema/mousemux/internal/tick"
)

const (
	// Rescans triggered by change notifications are spaced at least this
	// far apart; explicit requests and stale-topology recovery bypass it.
	deviceRescanDefaultMs  = 1000
	monitorRescanDefaultMs = 1000

	// A device reports Active while its last event is within this window.
	activeWindowMs = 100

	// At most this many host events per loop iteration, so surface
	// requests are never starved by an input flood.
	pollMaxEvents = 20
	// How long an idle iteration waits for the first event before
	// servicing requests again.
	pollWaitTimeout = 20 * time.Millisecond
)

// Global shortcut action ids.
const (
	actionLockCurrentMouse = 1000
	actionJumpNextMonitor  = 1001
)

// Processor owns all device, monitor and relocation state. Everything here
// runs on the Run goroutine; the only way in is the host event stream and
// the reactor request channel.
type Processor struct {
	host      host.Host
	core      *reactor.Core
	devices   *input.Set
	widener   *tick.Widener
	relocator *cursor.Relocator
	hotkeys   *hotkey.Manager[func()]

	cfg config.Config

	rlDevices  *tick.Ratelimit
	rlMonitors *tick.Ratelimit

	needDeviceRescan  bool
	needMonitorRescan bool
}

// New builds a processor around h. The configuration is snapshotted;
// later changes only arrive as reactor messages.
func New(h host.Host, core *reactor.Core, cfg config.Config) *Processor {
	p := &Processor{
		host:       h,
		core:       core,
		devices:    input.NewSet(),
		widener:    tick.NewWidener(tick.UptimeMillis),
		relocator:  cursor.NewRelocator(),
		cfg:        cfg.Clone(),
		rlDevices:  tick.NewRatelimit(intervalOr(cfg.Processor.DeviceRescanIntervalMs, deviceRescanDefaultMs)),
		rlMonitors: tick.NewRatelimit(intervalOr(cfg.Processor.MonitorRescanIntervalMs, monitorRescanDefaultMs)),
	}
	p.hotkeys = hotkey.NewManager[func()](h)
	return p
}

func intervalOr(ms uint64, def uint64) uint64 {
	if ms == 0 {
		return def
	}
	return ms
}

// Run starts the host and drives the loop until ctx is cancelled or an
// Exit request arrives.
func (p *Processor) Run(ctx context.Context) error {
	if err := p.host.Start(ctx); err != nil {
		return fmt.Errorf("failed to start host backend: %w", err)
	}
	defer func() { _ = p.host.Stop() }()

	if _, err := p.rescanMonitors(true); err != nil {
		return fmt.Errorf("initial monitor scan failed: %w", err)
	}
	if _, err := p.rescanDevices(true); err != nil {
		return fmt.Errorf("initial device scan failed: %w", err)
	}
	if err := p.registerShortcuts(); err != nil {
		logger.Warnf("Shortcut registration incomplete: %v", err)
	}

	events := p.host.Events()
	for {
		if m, ok := p.core.Poll(); ok {
			if p.handleRequest(m) {
				logger.Info("Processor exiting on request")
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !p.drainBatch(ctx, events) {
			return nil
		}
		p.resolveStaged()
	}
}

// drainBatch pulls up to pollMaxEvents host events, waiting at most
// pollWaitTimeout for the first. Returns false when the loop should stop.
func (p *Processor) drainBatch(ctx context.Context, events <-chan host.Event) bool {
	timer := time.NewTimer(pollWaitTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case ev, ok := <-events:
		if !ok {
			return false
		}
		p.handleEvent(ev)
	case <-timer.C:
		return true
	}

	for n := 1; n < pollMaxEvents; n++ {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			p.handleEvent(ev)
		default:
			return true
		}
	}
	return true
}

func (p *Processor) handleEvent(ev host.Event) {
	switch ev := ev.(type) {
	case host.RawInput:
		p.handleRaw(ev)
	case host.DeviceChange:
		p.needDeviceRescan = true
	case host.MonitorChange:
		p.needMonitorRescan = true
	case host.HotkeyPressed:
		if cb, ok := p.hotkeys.Callback(ev.Shortcut); ok {
			cb()
		}
	}
}

// handleRaw runs one positioned report through the relocation engine. The
// position phase sees the active device before attribution, then the event
// is attributed and the active device's history updated; the engine relies
// on exactly this order.
func (p *Processor) handleRaw(ev host.RawInput) {
	wtick := p.widener.Widen(uint32(ev.Tick))

	var activeCtl *input.Controller
	if active, ok := p.devices.Active(); ok {
		activeCtl = active.Ctrl
	}
	p.relocator.OnPosUpdate(activeCtl, ev.Pos)

	dev, ok := p.attribute(ev.Device, wtick)
	if !ok {
		// An unknown handle means the registry is stale.
		p.needDeviceRescan = true
		return
	}

	positioning := input.PositioningRelative
	if ev.Absolute {
		positioning = input.PositioningAbsolute
	}
	dev.Ctrl.UpdatePositioning(positioning)
	p.relocator.OnMouseUpdate(dev.Ctrl, wtick)
}

// attribute resolves a handle to a device and marks it active. Events
// without an identity fold into the active device when they arrive within
// the merge window of its last activity; otherwise they land on the
// synthetic unassociated-events device.
func (p *Processor) attribute(h input.Handle, wtick uint64) (*input.Device, bool) {
	if h == input.PseudoHandle {
		if merge := p.cfg.Processor.MergeUnassociatedEventsMs; merge >= 0 {
			if active, ok := p.devices.Active(); ok && active.Info.Handle != input.PseudoHandle {
				if last, _, _, seen := active.Ctrl.LastPos(); seen && wtick-last <= uint64(merge) {
					return active, true
				}
			}
		}
	}
	return p.devices.GetAndUpdateActive(h)
}

// resolveStaged applies everything the batch left behind: stale-topology
// recovery, rate-limited rescans and at most one cursor warp. All of it
// lands before the next batch is fetched.
func (p *Processor) resolveStaged() {
	if p.relocator.PopNeedUpdateMonitors() {
		if _, err := p.rescanMonitors(true); err != nil {
			logger.Warnf("Stale topology rescan failed: %v", err)
		}
	}
	// A change stays pending until a rescan succeeds; the rate limiter
	// spaces the retries.
	if p.needMonitorRescan {
		if ran, _ := p.rescanMonitors(false); ran {
			p.needMonitorRescan = false
		}
	}
	if p.needDeviceRescan {
		if ran, _ := p.rescanDevices(false); ran {
			p.needDeviceRescan = false
		}
	}
	if pos, ok := p.relocator.PopRelocatePos(); ok {
		if err := p.host.SetCursorPos(pos); err != nil {
			logger.Warnf("Failed to set cursor position to %v: %v", pos, err)
		} else {
			logger.Debug("Relocated cursor", "pos", pos.String())
		}
	}
}

// rescanDevices rebuilds the registry from a fresh enumeration. Returns
// whether the rescan actually ran; a rate-limited call is (false, nil).
func (p *Processor) rescanDevices(must bool) (bool, error) {
	if !must && !p.rlDevices.Allow(p.now()) {
		return false, nil
	}

	infos, err := p.host.Devices()
	if err != nil {
		logger.Errorf("Device enumeration failed: %v", err)
		return false, err
	}

	devs := make([]*input.Device, 0, len(infos))
	for _, info := range infos {
		if !info.Type.IsPointer() {
			continue
		}
		devs = append(devs, &input.Device{
			Info: info,
			Ctrl: input.NewController(info.ID, p.cfg.DeviceFor(info.ID)),
		})
	}
	p.devices.Rebuild(devs)
	p.replaySettings()
	logger.Debug("Rebuilt device registry", "devices", len(devs))
	return true, nil
}

// rescanMonitors swaps in fresh topology and resets every controller's
// spatial state, which was computed under the old geometry.
func (p *Processor) rescanMonitors(must bool) (bool, error) {
	if !must && !p.rlMonitors.Allow(p.now()) {
		return false, nil
	}

	monitors, err := p.host.Monitors()
	if err != nil {
		logger.Errorf("Monitor enumeration failed: %v", err)
		return false, err
	}

	p.relocator.UpdateMonitors(display.AreasOf(monitors))
	for _, d := range p.devices.Devices() {
		d.Ctrl.Reset()
	}
	logger.Debug("Updated monitor topology", "monitors", len(monitors))
	return true, nil
}

// replaySettings pushes the authoritative per-device policy onto every
// controller. Runs after each registry rebuild and each settings change,
// so registry and settings can never drift.
func (p *Processor) replaySettings() {
	for _, d := range p.devices.Devices() {
		d.Ctrl.UpdateSettings(p.cfg.DeviceFor(d.Info.ID))
	}
}

func (p *Processor) applySettings(cfg config.Config) error {
	p.cfg = cfg.Clone()
	p.rlDevices.Reset(intervalOr(cfg.Processor.DeviceRescanIntervalMs, deviceRescanDefaultMs))
	p.rlMonitors.Reset(intervalOr(cfg.Processor.MonitorRescanIntervalMs, monitorRescanDefaultMs))
	p.replaySettings()
	return p.registerShortcuts()
}

func (p *Processor) applyDeviceItem(item config.DeviceSettingItem) {
	merged := p.cfg.DeviceFor(item.ID).Merged(item)
	p.cfg.Devices[item.ID] = merged
	if d, ok := p.devices.ByID(item.ID); ok {
		d.Ctrl.UpdateSettings(merged)
	}
	logger.Debug("Applied device setting", "device", item.ID,
		"locked_in_monitor", merged.LockedInMonitor, "remember_pos", merged.RememberPos)
}

// registerShortcuts binds the configured combinations. Failures are
// collected per shortcut so one bad binding never takes down the other.
func (p *Processor) registerShortcuts() error {
	var errs []error
	bind := func(action int, name, combo string, cb func()) {
		if combo == "" {
			_ = p.hotkeys.Unregister(action)
			return
		}
		sc, err := hotkey.Parse(combo)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", name, combo, err))
			return
		}
		if err := p.hotkeys.Register(action, sc, cb); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", name, combo, err))
		}
	}
	bind(actionLockCurrentMouse, "lock_current_mouse", p.cfg.Shortcuts.LockCurrentMouse, p.toggleLockCurrentMouse)
	bind(actionJumpNextMonitor, "jump_next_monitor", p.cfg.Shortcuts.JumpNextMonitor, p.jumpNextMonitor)
	return errors.Join(errs...)
}

// toggleLockCurrentMouse flips lock-in-monitor for the active device and
// tells the surface, so displayed policy stays in sync.
func (p *Processor) toggleLockCurrentMouse() {
	active, ok := p.devices.Active()
	if !ok {
		return
	}
	s := active.Ctrl.Settings()
	s.LockedInMonitor = !s.LockedInMonitor
	active.Ctrl.UpdateSettings(s)
	p.cfg.Devices[active.Info.ID] = s

	logger.Info("Toggled lock-in-monitor", "device", active.Info.ID, "locked", s.LockedInMonitor)
	p.core.PushUI(reactor.NewLockCurrentMouse(active.Info.ID, s.LockedInMonitor))
}

func (p *Processor) jumpNextMonitor() {
	var ctl *input.Controller
	if active, ok := p.devices.Active(); ok {
		ctl = active.Ctrl
	}
	p.relocator.JumpToNextMonitor(ctl)
}

// handleRequest serves one surface request. Roundtrip envelopes travel
// back on the surface channel once their slot is filled. Returns true on
// Exit.
func (p *Processor) handleRequest(m reactor.Message) bool {
	switch msg := m.(type) {
	case reactor.Exit:
		return true

	case *reactor.ScanDevices:
		msg.Rt.TakeRequest()
		if _, err := p.rescanDevices(true); err != nil {
			msg.Rt.Fail(err)
		} else {
			msg.Rt.Reply(p.deviceList())
		}
		p.core.PushUI(msg)

	case *reactor.InspectDevicesStatus:
		msg.Rt.TakeRequest()
		msg.Rt.Reply(p.deviceStatuses())
		p.core.PushUI(msg)

	case *reactor.ApplyProcessorSettings:
		cfg := msg.Rt.TakeRequest()
		if err := p.applySettings(cfg); err != nil {
			msg.Rt.Fail(err)
		} else {
			msg.Rt.Reply(struct{}{})
		}
		p.core.PushUI(msg)

	case *reactor.ApplyOneDeviceSetting:
		p.applyDeviceItem(msg.Data.Take())
	}
	return false
}

// deviceList returns descriptors for every real device, synthetic one
// excluded.
func (p *Processor) deviceList() []input.Info {
	devs := p.devices.Devices()
	infos := make([]input.Info, 0, len(devs))
	for _, d := range devs {
		if d.Info.Handle == input.PseudoHandle {
			continue
		}
		infos = append(infos, d.Info)
	}
	return infos
}

// deviceStatuses reports liveness for connected devices plus configured
// ids without a connected device. The synthetic device only shows up once
// it has collected something.
func (p *Processor) deviceStatuses() []input.StatusEntry {
	now := p.now()
	entries := make([]input.StatusEntry, 0, p.devices.Len())
	seen := make(map[string]bool, p.devices.Len())

	for _, d := range p.devices.Devices() {
		last, _, positioning, active := d.Ctrl.LastPos()
		if d.Info.Handle == input.PseudoHandle && !active {
			continue
		}
		st := input.Status{Kind: input.StatusIdle}
		if active && now-last <= activeWindowMs {
			st = input.Status{Kind: input.StatusActive, Positioning: positioning}
		}
		entries = append(entries, input.StatusEntry{ID: d.Info.ID, Status: st})
		seen[d.Info.ID] = true
	}

	missing := make([]string, 0, len(p.cfg.Devices))
	for id := range p.cfg.Devices {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	for _, id := range missing {
		entries = append(entries, input.StatusEntry{
			ID:     id,
			Status: input.Status{Kind: input.StatusDisconnected},
		})
	}
	return entries
}

// now is the current moment on the widened tick axis, the same axis event
// timestamps live on.
func (p *Processor) now() uint64 {
	return p.widener.Widen(uint32(p.host.NativeTick()))
}
