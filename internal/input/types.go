// Package input models pointing devices: their classification, per-device
// state and the registry the event processor drives.
package input

// Positioning describes how a device reports coordinates.
type Positioning uint8

const (
	PositioningUnknown Positioning = iota
	// Relative deltas, the usual mouse case
	PositioningRelative
	// Absolute coordinates, tablets and touch
	PositioningAbsolute
)

func (p Positioning) String() string {
	switch p {
	case PositioningRelative:
		return "relative"
	case PositioningAbsolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// DeviceType classifies a device from its vendor-supplied HID usage pair.
// Ref: https://www.usb.org/document-library/hid-usage-tables-14
type DeviceType uint8

const (
	TypeUnknown DeviceType = iota
	// The synthetic device collecting events without an identity
	TypeDummy
	TypeUnknownHID

	// Generic Desktop Page (0x01)
	TypePointer
	TypeMouse
	TypeJoystick
	TypeGamepad
	TypeKeyboard
	TypeKeypad
	TypeOtherGenericDesktop

	// Digitizer Page (0x0D)
	TypeDigitizer
	TypePen
	TypeLightPen
	TypeTouchScreen
	TypeTouchPad
	TypeWhiteboard
	TypeOtherDigitizer

	// Pages 0xFF00 and above
	TypeVendorDefined
)

// TypeFromHIDUsage maps a (page, usage) pair onto a DeviceType. Unknown
// pairs land on an explicit bucket, never an error.
func TypeFromHIDUsage(page, usage uint16) DeviceType {
	if page >= 0xFF00 {
		return TypeVendorDefined
	}
	switch page {
	case 0x01:
		switch usage {
		case 0x01:
			return TypePointer
		case 0x02:
			return TypeMouse
		case 0x04:
			return TypeJoystick
		case 0x05:
			return TypeGamepad
		case 0x06:
			return TypeKeyboard
		case 0x07:
			return TypeKeypad
		default:
			return TypeOtherGenericDesktop
		}
	case 0x0D:
		switch usage {
		case 0x01:
			return TypeDigitizer
		case 0x02:
			return TypePen
		case 0x03:
			return TypeLightPen
		case 0x04:
			return TypeTouchScreen
		case 0x05:
			return TypeTouchPad
		case 0x06:
			return TypeWhiteboard
		default:
			return TypeOtherDigitizer
		}
	default:
		return TypeUnknownHID
	}
}

// IsPointer reports whether the device moves the cursor.
func (t DeviceType) IsPointer() bool {
	switch t {
	case TypeDummy, TypePointer, TypeMouse,
		TypeDigitizer, TypePen, TypeLightPen,
		TypeTouchScreen, TypeTouchPad, TypeWhiteboard, TypeOtherDigitizer:
		return true
	default:
		return false
	}
}

func (t DeviceType) String() string {
	switch t {
	case TypeDummy:
		return "dummy"
	case TypeUnknownHID:
		return "unknown-hid"
	case TypePointer:
		return "pointer"
	case TypeMouse:
		return "mouse"
	case TypeJoystick:
		return "joystick"
	case TypeGamepad:
		return "gamepad"
	case TypeKeyboard:
		return "keyboard"
	case TypeKeypad:
		return "keypad"
	case TypeOtherGenericDesktop:
		return "other-generic-desktop"
	case TypeDigitizer:
		return "digitizer"
	case TypePen:
		return "pen"
	case TypeLightPen:
		return "light-pen"
	case TypeTouchScreen:
		return "touch-screen"
	case TypeTouchPad:
		return "touch-pad"
	case TypeWhiteboard:
		return "whiteboard"
	case TypeOtherDigitizer:
		return "other-digitizer"
	case TypeVendorDefined:
		return "vendor-defined"
	default:
		return "unknown"
	}
}

// StatusKind is the liveness bucket a device falls in.
type StatusKind uint8

const (
	StatusUnknown StatusKind = iota
	StatusActive
	StatusIdle
	StatusDisconnected
)

func (k StatusKind) String() string {
	switch k {
	case StatusActive:
		return "active"
	case StatusIdle:
		return "idle"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Status reports device liveness. Positioning is meaningful only when Kind
// is StatusActive.
type Status struct {
	Kind        StatusKind  `json:"kind"`
	Positioning Positioning `json:"positioning,omitempty"`
}

func (s Status) String() string {
	if s.Kind == StatusActive {
		return s.Kind.String() + "(" + s.Positioning.String() + ")"
	}
	return s.Kind.String()
}

// StatusEntry pairs a device id with its current status.
type StatusEntry struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}
