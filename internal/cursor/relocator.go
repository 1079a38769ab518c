// Package cursor implements the relocation engine: given raw position
// reports and active-device switches, it decides whether and where the
// on-screen cursor moves.
package cursor

import (
	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/input"
)

// Relocator owns the topology snapshot and the engine's notion of the
// current cursor position. All calls happen on the processor goroutine.
// Staged outputs are drained once after each processed batch.
type Relocator struct {
	monitors display.AreaList

	curDevice          string
	curPos             display.Pos
	relocatePos        *display.Pos
	needUpdateMonitors bool

	// Last position the cursor left each monitor at, keyed by circular
	// index, used when jump-cycling monitors
	monVisitPos map[int]display.Pos
}

func NewRelocator() *Relocator {
	return &Relocator{monVisitPos: map[int]display.Pos{}}
}

// UpdateMonitors swaps in a fresh topology. Remembered per-monitor
// positions and a pending relocation are meaningless under the new
// geometry and are dropped with the old one.
func (r *Relocator) UpdateMonitors(l display.AreaList) {
	r.monitors = l
	r.monVisitPos = map[int]display.Pos{}
	r.relocatePos = nil
}

// OnPosUpdate handles one raw position report before it is attributed to a
// device. ctl is nil when no controller owns the event. Must run before
// OnMouseUpdate for the same event.
func (r *Relocator) OnPosUpdate(ctl *input.Controller, pos display.Pos) {
	if ctl != nil && ctl.Settings().LockedInMonitor {
		if area, ok := ctl.LockedArea(); ok {
			// Leaving the locked area pins the cursor back inside
			if captured := area.CapturePos(pos); captured != pos {
				r.stage(captured)
				r.curPos = captured
				return
			}
		} else {
			if area, ok := r.monitors.Locate(pos); ok {
				ctl.SetLockedArea(area)
			} else {
				// Topology snapshot is stale; the first sample after
				// entering lock mode is allowed through unclamped
				r.needUpdateMonitors = true
				return
			}
		}
	}
	r.curPos = pos
}

// OnMouseUpdate attributes the event to ctl once the device is resolved.
// On a device switch with remember-position policy the cursor returns to
// the device's last recorded position, overriding whatever OnPosUpdate
// computed for this tick.
func (r *Relocator) OnMouseUpdate(ctl *input.Controller, tick uint64) {
	if r.curDevice != ctl.ID() {
		r.curDevice = ctl.ID()

		if ctl.Settings().RememberPos {
			if _, old, _, ok := ctl.LastPos(); ok {
				if _, found := r.monitors.Locate(old); found {
					r.stage(old)
					r.curPos = old
				} else {
					r.needUpdateMonitors = true
				}
				return
			}
		}
	}
	ctl.UpdatePos(r.curPos, tick)
}

// JumpToNextMonitor cycles the cursor to the next monitor in enumeration
// order, landing on that monitor's remembered position or its center. A
// locked controller's cached region is cleared so the next position report
// re-resolves it against the new monitor.
func (r *Relocator) JumpToNextMonitor(ctl *input.Controller) {
	if r.monitors.Len() == 0 {
		return
	}

	id, _ := r.monitors.LocateID(r.curPos)
	r.monVisitPos[id] = r.curPos

	next := r.monitors.NextID(id)
	dest, ok := r.monVisitPos[next]
	if !ok {
		dest = r.monitors.Area(next).Center()
	}
	r.stage(dest)
	r.curPos = dest

	if ctl != nil && ctl.Settings().LockedInMonitor {
		ctl.ClearLockedArea()
	}
}

// PopRelocatePos drains the staged relocation target.
func (r *Relocator) PopRelocatePos() (display.Pos, bool) {
	if r.relocatePos == nil {
		return display.Pos{}, false
	}
	p := *r.relocatePos
	r.relocatePos = nil
	return p, true
}

// PopNeedUpdateMonitors drains the stale-topology flag.
func (r *Relocator) PopNeedUpdateMonitors() bool {
	v := r.needUpdateMonitors
	r.needUpdateMonitors = false
	return v
}

// CurrentPos returns the engine's cursor position.
func (r *Relocator) CurrentPos() display.Pos {
	return r.curPos
}

func (r *Relocator) stage(p display.Pos) {
	r.relocatePos = &p
}
