package reactor

import (
	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/input"
)

// Message is the closed set of envelopes flowing between the processor and
// the control surface.
type Message interface {
	message()
}

// Exit asks the receiving loop to shut down.
type Exit struct{}

// CloseUI tells the control surface to stop serving.
type CloseUI struct{}

// RestartUI tells the control surface to rebuild itself.
type RestartUI struct{}

// Tick drives the surface's periodic status refresh.
type Tick struct{}

// ScanDevices forces a device rescan and returns fresh descriptors.
type ScanDevices struct {
	Rt *Roundtrip[struct{}, []input.Info]
}

func NewScanDevices() *ScanDevices {
	return &ScanDevices{Rt: NewRoundtrip[struct{}, []input.Info](struct{}{})}
}

// InspectDevicesStatus reports per-device liveness.
type InspectDevicesStatus struct {
	Rt *Roundtrip[struct{}, []input.StatusEntry]
}

func NewInspectDevicesStatus() *InspectDevicesStatus {
	return &InspectDevicesStatus{Rt: NewRoundtrip[struct{}, []input.StatusEntry](struct{}{})}
}

// ApplyProcessorSettings replaces merge, shortcut and per-device policy
// and re-registers shortcuts.
type ApplyProcessorSettings struct {
	Rt *Roundtrip[config.Config, struct{}]
}

func NewApplyProcessorSettings(cfg config.Config) *ApplyProcessorSettings {
	return &ApplyProcessorSettings{Rt: NewRoundtrip[config.Config, struct{}](cfg)}
}

// ApplyOneDeviceSetting incrementally updates one device's policy without
// a full settings round trip.
type ApplyOneDeviceSetting struct {
	Data *Send[config.DeviceSettingItem]
}

func NewApplyOneDeviceSetting(item config.DeviceSettingItem) *ApplyOneDeviceSetting {
	return &ApplyOneDeviceSetting{Data: NewSend(item)}
}

// LockToggled is the payload of a LockCurrentMouse notification.
type LockToggled struct {
	ID     string
	Locked bool
}

// LockCurrentMouse tells the surface a shortcut toggled lock-in-monitor
// for the named device, so displayed policy stays in sync.
type LockCurrentMouse struct {
	Data *Send[LockToggled]
}

func NewLockCurrentMouse(id string, locked bool) *LockCurrentMouse {
	return &LockCurrentMouse{Data: NewSend(LockToggled{ID: id, Locked: locked})}
}

func (Exit) message()                    {}
func (CloseUI) message()                 {}
func (RestartUI) message()               {}
func (Tick) message()                    {}
func (*ScanDevices) message()            {}
func (*InspectDevicesStatus) message()   {}
func (*ApplyProcessorSettings) message() {}
func (*ApplyOneDeviceSetting) message()  {}
func (*LockCurrentMouse) message()       {}
