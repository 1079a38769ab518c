// Package daemon assembles the running system: the host backend and event
// processor on one goroutine, the control surface on another, the reactor
// pair between them and the control socket facing the CLI.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/host"
	"github.com/bnema/mousemux/internal/input"
	"github.com/bnema/mousemux/internal/ipc"
	"github.com/bnema/mousemux/internal/logger"
	"github.com/bnema/mousemux/internal/processor"
	"github.com/bnema/mousemux/internal/reactor"
)

// requestTimeout bounds how long the surface waits for the processor to
// hand an envelope back. The processor answers between event batches, so
// hitting this means the loop is wedged.
const requestTimeout = 5 * time.Second

const defaultRefreshMs = 1000

// ctrlCall carries one socket request onto the surface goroutine.
type ctrlCall struct {
	req   ipc.Request
	reply chan ipc.Response
}

// Daemon wires the pieces together and runs them.
type Daemon struct {
	cfg     config.Config
	proc    *processor.Processor
	core    *reactor.Core
	surface *reactor.Surface
	server  *ipc.SocketServer
	ctrl    chan ctrlCall

	// Set while await pumps messages, so a Tick arriving mid-roundtrip
	// cannot start a nested status refresh that would swallow the
	// envelope being waited for.
	awaiting bool

	// Last statuses seen by the periodic refresh, for transition logging
	lastStatus map[string]input.StatusKind
}

// New builds a daemon around h. The configuration snapshot becomes the
// processor's authoritative settings.
func New(h host.Host, cfg config.Config) (*Daemon, error) {
	core, surface := reactor.New()
	d := &Daemon{
		cfg:        cfg.Clone(),
		proc:       processor.New(h, core, cfg),
		core:       core,
		surface:    surface,
		ctrl:       make(chan ctrlCall),
		lastStatus: map[string]input.StatusKind{},
	}
	server, err := ipc.NewSocketServer(d)
	if err != nil {
		return nil, err
	}
	d.server = server
	return d, nil
}

// Run blocks until ctx is cancelled, a stop request arrives or the
// processor fails. The calling goroutine becomes the control surface.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.server.Start(); err != nil {
		return err
	}
	defer d.server.Stop()

	procCtx, cancelProc := context.WithCancel(ctx)
	defer cancelProc()

	procDone := make(chan error, 1)
	go func() { procDone <- d.proc.Run(procCtx) }()

	refresh := d.cfg.Daemon.StatusRefreshMs
	if refresh <= 0 {
		refresh = defaultRefreshMs
	}
	timer := reactor.StartTimer(time.Duration(refresh)*time.Millisecond, d.core.UISink())
	defer timer.Stop()

	logger.Info("mousemux daemon running")

	for {
		select {
		case <-ctx.Done():
			d.surface.Send(reactor.Exit{})
			return d.drainProcessor(procDone, cancelProc)

		case err := <-procDone:
			if err != nil {
				return fmt.Errorf("processor failed: %w", err)
			}
			return nil

		case m := <-d.surface.Messages():
			d.handleNotification(m)

		case call := <-d.ctrl:
			rsp, stop := d.serve(call.req)
			call.reply <- rsp
			if stop {
				logger.Info("Stop requested over control socket")
				d.surface.Send(reactor.Exit{})
				return d.drainProcessor(procDone, cancelProc)
			}
		}
	}
}

// drainProcessor waits for the processor goroutine after an Exit was
// queued, cancelling its context if it does not come back in time.
func (d *Daemon) drainProcessor(procDone <-chan error, cancel context.CancelFunc) error {
	select {
	case err := <-procDone:
		return err
	case <-time.After(requestTimeout):
		cancel()
		return <-procDone
	}
}

// Handle runs on a socket connection goroutine; the work happens on the
// surface goroutine so reactor traffic stays single-consumer.
func (d *Daemon) Handle(req ipc.Request) ipc.Response {
	call := ctrlCall{req: req, reply: make(chan ipc.Response, 1)}
	select {
	case d.ctrl <- call:
		return <-call.reply
	case <-time.After(requestTimeout):
		return ipc.ErrorResponse(fmt.Errorf("daemon is not responding"))
	}
}

// serve answers one control request. The second return value asks the run
// loop to shut down.
func (d *Daemon) serve(req ipc.Request) (ipc.Response, bool) {
	switch req.Command {
	case ipc.CmdScanDevices:
		env := reactor.NewScanDevices()
		d.surface.Send(env)
		if !d.await(env) {
			return ipc.ErrorResponse(fmt.Errorf("scan timed out")), false
		}
		devices, err := env.Rt.TakeResponse()
		if err != nil {
			return ipc.ErrorResponse(err), false
		}
		return ipc.Response{OK: true, Devices: devices}, false

	case ipc.CmdInspectStatus:
		env := reactor.NewInspectDevicesStatus()
		d.surface.Send(env)
		if !d.await(env) {
			return ipc.ErrorResponse(fmt.Errorf("status query timed out")), false
		}
		statuses, err := env.Rt.TakeResponse()
		if err != nil {
			return ipc.ErrorResponse(err), false
		}
		return ipc.Response{OK: true, Statuses: statuses}, false

	case ipc.CmdApplySetting:
		if req.Setting == nil {
			return ipc.ErrorResponse(fmt.Errorf("apply-setting without a setting")), false
		}
		item := *req.Setting
		d.surface.Send(reactor.NewApplyOneDeviceSetting(item))
		d.persistDeviceSetting(item.ID, d.cfg.DeviceFor(item.ID).Merged(item))
		return ipc.Response{OK: true}, false

	case ipc.CmdStop:
		return ipc.Response{OK: true}, true

	default:
		return ipc.ErrorResponse(fmt.Errorf("unknown command %q", req.Command)), false
	}
}

// await pumps inbound messages until env comes back with its response slot
// filled. Notifications arriving in between are handled in passing.
func (d *Daemon) await(env reactor.Message) bool {
	d.awaiting = true
	defer func() { d.awaiting = false }()

	deadline := time.NewTimer(requestTimeout)
	defer deadline.Stop()
	for {
		select {
		case m := <-d.surface.Messages():
			if m == env {
				return true
			}
			d.handleNotification(m)
		case <-deadline.C:
			return false
		}
	}
}

func (d *Daemon) handleNotification(m reactor.Message) {
	switch msg := m.(type) {
	case reactor.Tick:
		if !d.awaiting {
			d.refreshStatus()
		}

	case *reactor.LockCurrentMouse:
		data := msg.Data.Take()
		settings := d.cfg.DeviceFor(data.ID)
		settings.LockedInMonitor = data.Locked
		d.persistDeviceSetting(data.ID, settings)

	case reactor.CloseUI, reactor.RestartUI:
		// No attached UI to manage; the CLI reconnects per request.
		logger.Debug("Ignoring UI lifecycle message", "type", fmt.Sprintf("%T", m))
	}
}

// refreshStatus polls device liveness and logs transitions. Failures stay
// silent beyond a debug line: churn makes them expected.
func (d *Daemon) refreshStatus() {
	env := reactor.NewInspectDevicesStatus()
	d.surface.Send(env)
	if !d.await(env) {
		logger.Debug("Status refresh timed out")
		return
	}
	statuses, err := env.Rt.TakeResponse()
	if err != nil {
		logger.Debugf("Status refresh failed: %v", err)
		return
	}
	for _, entry := range statuses {
		if prev, ok := d.lastStatus[entry.ID]; !ok || prev != entry.Status.Kind {
			logger.Debug("Device status changed", "device", entry.ID, "status", entry.Status.String())
		}
		d.lastStatus[entry.ID] = entry.Status.Kind
	}
}

// persistDeviceSetting stores a policy in the daemon's snapshot and writes
// it through to the config file.
func (d *Daemon) persistDeviceSetting(id string, settings config.DeviceSettings) {
	d.cfg.Devices[id] = settings
	if err := config.UpdateDevice(id, settings); err != nil {
		logger.Warnf("Failed to persist settings for %s: %v", id, err)
	}
}
