package input

import (
	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/display"
)

// Controller tracks one device's activity history and lock state. All
// access happens on the processor goroutine; tick 0 means "never active".
type Controller struct {
	id              string
	settings        config.DeviceSettings
	lastActiveTick  uint64
	lastActivePos   display.Pos
	lastPositioning Positioning
	lockedArea      *display.MonitorArea
}

func NewController(id string, settings config.DeviceSettings) *Controller {
	return &Controller{id: id, settings: settings}
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Settings() config.DeviceSettings {
	return c.settings
}

// UpdateSettings replaces the policy. The cached lock region was computed
// under the old policy and goes with it.
func (c *Controller) UpdateSettings(s config.DeviceSettings) {
	c.settings = s
	c.lockedArea = nil
}

// UpdatePositioning records how the latest raw event reported coordinates.
func (c *Controller) UpdatePositioning(p Positioning) {
	c.lastPositioning = p
}

// UpdatePos records the cursor position at tick. Only the relocation engine
// calls this: for relative devices the raw report does not equal the
// resulting cursor position.
func (c *Controller) UpdatePos(p display.Pos, tick uint64) {
	c.lastActivePos = p
	c.lastActiveTick = tick
}

// LastPos returns the last recorded activity. ok is false until the device
// has been active at least once.
func (c *Controller) LastPos() (tick uint64, pos display.Pos, positioning Positioning, ok bool) {
	if c.lastActiveTick == 0 {
		return 0, display.Pos{}, PositioningUnknown, false
	}
	return c.lastActiveTick, c.lastActivePos, c.lastPositioning, true
}

// Reset clears the lock region and activity history, used when a topology
// change invalidates all spatial assumptions.
func (c *Controller) Reset() {
	c.lockedArea = nil
	c.lastActiveTick = 0
}

// LockedArea returns the cached monitor the device is clamped to.
func (c *Controller) LockedArea() (display.MonitorArea, bool) {
	if c.lockedArea == nil {
		return display.MonitorArea{}, false
	}
	return *c.lockedArea, true
}

func (c *Controller) SetLockedArea(a display.MonitorArea) {
	c.lockedArea = &a
}

func (c *Controller) ClearLockedArea() {
	c.lockedArea = nil
}
