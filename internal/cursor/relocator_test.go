package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/input"
)

func area(x1, y1, x2, y2 int32) display.MonitorArea {
	return display.MonitorArea{
		LeftTop:     display.Pos{X: x1, Y: y1},
		RightBottom: display.Pos{X: x2, Y: y2},
	}
}

func sideBySide(n int) display.AreaList {
	areas := make([]display.MonitorArea, 0, n)
	for i := 0; i < n; i++ {
		x := int32(i) * 1000
		areas = append(areas, area(x, 0, x+1000, 1000))
	}
	return display.NewAreaList(areas)
}

func plainCtl(id string) *input.Controller {
	return input.NewController(id, config.DeviceSettings{})
}

func lockedCtl(id string) *input.Controller {
	return input.NewController(id, config.DeviceSettings{LockedInMonitor: true})
}

func rememberCtl(id string) *input.Controller {
	return input.NewController(id, config.DeviceSettings{RememberPos: true})
}

// feed runs one event through the engine in processing order.
func feed(r *Relocator, ctl *input.Controller, pos display.Pos, tick uint64) {
	r.OnPosUpdate(ctl, pos)
	r.OnMouseUpdate(ctl, tick)
}

func TestOnPosUpdateAdoptsUnownedPosition(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(1))

	r.OnPosUpdate(nil, display.Pos{X: 42, Y: 17})
	assert.Equal(t, display.Pos{X: 42, Y: 17}, r.CurrentPos())

	_, ok := r.PopRelocatePos()
	assert.False(t, ok)
}

func TestLockResolvesAreaWithoutRelocating(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(2))
	ctl := lockedCtl("tablet")

	// First sample after entering lock mode only caches the area.
	feed(r, ctl, display.Pos{X: 500, Y: 500}, 10)

	cached, ok := ctl.LockedArea()
	assert.True(t, ok)
	assert.Equal(t, area(0, 0, 1000, 1000), cached)
	assert.Equal(t, display.Pos{X: 500, Y: 500}, r.CurrentPos())

	_, ok = r.PopRelocatePos()
	assert.False(t, ok)
	assert.False(t, r.PopNeedUpdateMonitors())
}

func TestLockClampsLeavingPosition(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(2))
	ctl := lockedCtl("tablet")

	feed(r, ctl, display.Pos{X: 500, Y: 500}, 10)

	// Crossing into the second monitor pins the cursor just inside the
	// right edge of the locked one.
	feed(r, ctl, display.Pos{X: 1200, Y: 500}, 20)

	got, ok := r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, display.Pos{X: 999, Y: 500}, got)
	assert.Equal(t, display.Pos{X: 999, Y: 500}, r.CurrentPos())

	// Moving inside the locked monitor stages nothing.
	feed(r, ctl, display.Pos{X: 400, Y: 300}, 30)
	_, ok = r.PopRelocatePos()
	assert.False(t, ok)
	assert.Equal(t, display.Pos{X: 400, Y: 300}, r.CurrentPos())
}

func TestLockMissMarksTopologyStale(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(display.NewAreaList([]display.MonitorArea{area(100, 100, 1000, 1000)}))
	ctl := lockedCtl("tablet")

	r.OnPosUpdate(ctl, display.Pos{X: 5000, Y: 5000})

	// No area resolved: the sample passes through unclamped and the
	// engine asks for a rescan instead of guessing.
	_, ok := r.PopRelocatePos()
	assert.False(t, ok)
	assert.Equal(t, display.Pos{}, r.CurrentPos())
	assert.True(t, r.PopNeedUpdateMonitors())
	assert.False(t, r.PopNeedUpdateMonitors(), "flag must drain on pop")

	_, ok = ctl.LockedArea()
	assert.False(t, ok)
}

func TestSwitchRestoresRememberedPosition(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(2))
	mouse := rememberCtl("mouse")
	tablet := plainCtl("tablet")

	feed(r, mouse, display.Pos{X: 200, Y: 300}, 10)
	feed(r, tablet, display.Pos{X: 700, Y: 800}, 20)

	// Switching back relocates to exactly where the mouse left off,
	// overriding the position the event itself reported.
	feed(r, mouse, display.Pos{X: 750, Y: 810}, 30)

	got, ok := r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, display.Pos{X: 200, Y: 300}, got)
	assert.Equal(t, display.Pos{X: 200, Y: 300}, r.CurrentPos())

	// The switch event itself does not advance the mouse's history.
	tick, pos, _, ok := mouse.LastPos()
	assert.True(t, ok)
	assert.Equal(t, uint64(10), tick)
	assert.Equal(t, display.Pos{X: 200, Y: 300}, pos)
}

func TestSwitchWithoutMemoryKeepsPosition(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(2))
	a := plainCtl("a")
	b := plainCtl("b")

	feed(r, a, display.Pos{X: 200, Y: 300}, 10)
	feed(r, b, display.Pos{X: 700, Y: 800}, 20)
	feed(r, a, display.Pos{X: 750, Y: 810}, 30)

	_, ok := r.PopRelocatePos()
	assert.False(t, ok)
	assert.Equal(t, display.Pos{X: 750, Y: 810}, r.CurrentPos())

	tick, pos, _, ok := a.LastPos()
	assert.True(t, ok)
	assert.Equal(t, uint64(30), tick)
	assert.Equal(t, display.Pos{X: 750, Y: 810}, pos)
}

func TestSwitchToDeviceWithoutHistory(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(2))
	a := plainCtl("a")
	b := rememberCtl("b")

	feed(r, a, display.Pos{X: 200, Y: 300}, 10)

	// b remembers positions but has none yet, so the event is handled
	// like any other.
	feed(r, b, display.Pos{X: 500, Y: 500}, 20)

	_, ok := r.PopRelocatePos()
	assert.False(t, ok)
	assert.Equal(t, display.Pos{X: 500, Y: 500}, r.CurrentPos())

	tick, _, _, ok := b.LastPos()
	assert.True(t, ok)
	assert.Equal(t, uint64(20), tick)
}

func TestRememberedPositionOffTopologyMarksStale(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(1))
	a := plainCtl("a")
	b := rememberCtl("b")

	// Plant history for b on a monitor the current snapshot no longer has.
	b.UpdatePos(display.Pos{X: 5000, Y: 5000}, 5)

	feed(r, a, display.Pos{X: 200, Y: 300}, 10)
	r.OnPosUpdate(b, display.Pos{X: 210, Y: 300})
	r.OnMouseUpdate(b, 20)

	_, ok := r.PopRelocatePos()
	assert.False(t, ok)
	assert.True(t, r.PopNeedUpdateMonitors())
}

func TestJumpCyclesMonitors(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(3))
	ctl := plainCtl("mouse")

	feed(r, ctl, display.Pos{X: 100, Y: 100}, 10)

	// First visits land on centers.
	r.JumpToNextMonitor(ctl)
	got, ok := r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, display.Pos{X: 1500, Y: 500}, got)

	r.JumpToNextMonitor(ctl)
	got, ok = r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, display.Pos{X: 2500, Y: 500}, got)

	// The full cycle returns to the exact departure position.
	r.JumpToNextMonitor(ctl)
	got, ok = r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, display.Pos{X: 100, Y: 100}, got)

	// And the next monitor now has a remembered spot too.
	r.JumpToNextMonitor(ctl)
	got, ok = r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, display.Pos{X: 1500, Y: 500}, got)
}

func TestJumpOnEmptyTopologyIsNoOp(t *testing.T) {
	r := NewRelocator()
	ctl := plainCtl("mouse")

	r.JumpToNextMonitor(ctl)

	_, ok := r.PopRelocatePos()
	assert.False(t, ok)
	assert.Equal(t, display.Pos{}, r.CurrentPos())
}

func TestJumpDefaultsToFirstMonitorOnMiss(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(display.NewAreaList([]display.MonitorArea{
		area(100, 100, 1000, 1000),
		area(1000, 100, 2000, 1000),
	}))

	// Current position (0,0) is outside both monitors; the jump treats it
	// as departing monitor 0.
	r.JumpToNextMonitor(nil)

	got, ok := r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, area(1000, 100, 2000, 1000).Center(), got)
}

func TestJumpClearsLockRegion(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(2))
	ctl := lockedCtl("tablet")

	feed(r, ctl, display.Pos{X: 500, Y: 500}, 10)
	_, ok := ctl.LockedArea()
	assert.True(t, ok)

	r.JumpToNextMonitor(ctl)
	got, ok := r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, display.Pos{X: 1500, Y: 500}, got)

	// The old region would clamp the cursor straight back; it must go.
	_, ok = ctl.LockedArea()
	assert.False(t, ok)

	// The next sample re-resolves the lock against the new monitor.
	feed(r, ctl, display.Pos{X: 1500, Y: 500}, 20)
	cached, ok := ctl.LockedArea()
	assert.True(t, ok)
	assert.Equal(t, area(1000, 0, 2000, 1000), cached)
	_, ok = r.PopRelocatePos()
	assert.False(t, ok)
}

func TestUpdateMonitorsClearsPendingState(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(2))
	ctl := lockedCtl("tablet")

	feed(r, ctl, display.Pos{X: 500, Y: 500}, 10)
	feed(r, ctl, display.Pos{X: 1200, Y: 500}, 20)

	// A staged relocation computed against the old geometry is dropped.
	r.UpdateMonitors(sideBySide(2))
	_, ok := r.PopRelocatePos()
	assert.False(t, ok)
}

func TestUpdateMonitorsForgetsJumpMemory(t *testing.T) {
	r := NewRelocator()
	r.UpdateMonitors(sideBySide(2))
	ctl := plainCtl("mouse")

	feed(r, ctl, display.Pos{X: 100, Y: 100}, 10)
	r.JumpToNextMonitor(ctl)
	r.PopRelocatePos()
	r.JumpToNextMonitor(ctl)
	r.PopRelocatePos()

	// Back on monitor 0; a rescan wipes the remembered spots.
	r.UpdateMonitors(sideBySide(2))
	r.JumpToNextMonitor(ctl)

	got, ok := r.PopRelocatePos()
	assert.True(t, ok)
	assert.Equal(t, display.Pos{X: 1500, Y: 500}, got, "remembered spot must not survive a rescan")
}
