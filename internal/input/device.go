package input

import (
	"github.com/bnema/mousemux/internal/config"
)

// Handle identifies a device to the host for the lifetime of its
// connection. It is meaningless across rescans or processes.
type Handle uint64

const (
	// PseudoHandle tags events that arrive without a device identity.
	PseudoHandle Handle = 0
	// PseudoDeviceID is the registry id of the synthetic device that
	// collects those events.
	PseudoDeviceID = "unassociated-events"
)

// Info is the descriptor enumerated from the host for one device.
type Info struct {
	ID         string            `json:"id"`
	Handle     Handle            `json:"-"`
	Type       DeviceType        `json:"type"`
	Name       string            `json:"name"`
	Product    string            `json:"product,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Device couples a descriptor with its runtime controller state.
type Device struct {
	Info Info
	Ctrl *Controller
}

func newPseudoDevice() *Device {
	info := Info{
		ID:     PseudoDeviceID,
		Handle: PseudoHandle,
		Type:   TypeDummy,
		Name:   "Unassociated events",
	}
	return &Device{Info: info, Ctrl: NewController(info.ID, config.DeviceSettings{})}
}
