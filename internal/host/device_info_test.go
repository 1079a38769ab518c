package host

import (
	"testing"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/mousemux/internal/input"
)

func TestUsagePairClassification(t *testing.T) {
	tests := []struct {
		name string
		caps map[int][]int
		want input.DeviceType
	}{
		{
			name: "usb mouse",
			caps: map[int][]int{
				evdev.EV_REL: {evdev.REL_X, evdev.REL_Y, evdev.REL_WHEEL},
				evdev.EV_KEY: {evdev.BTN_LEFT, evdev.BTN_RIGHT, evdev.BTN_MIDDLE},
			},
			want: input.TypeMouse,
		},
		{
			name: "drawing tablet pen",
			caps: map[int][]int{
				evdev.EV_ABS: {evdev.ABS_X, evdev.ABS_Y, evdev.ABS_PRESSURE},
				evdev.EV_KEY: {evdev.BTN_TOOL_PEN, evdev.BTN_TOUCH, evdev.BTN_STYLUS},
			},
			want: input.TypePen,
		},
		{
			name: "laptop touchpad",
			caps: map[int][]int{
				evdev.EV_ABS: {evdev.ABS_X, evdev.ABS_Y},
				evdev.EV_KEY: {evdev.BTN_TOOL_FINGER, evdev.BTN_TOUCH, evdev.BTN_LEFT},
			},
			want: input.TypeTouchPad,
		},
		{
			name: "touch screen",
			caps: map[int][]int{
				evdev.EV_ABS: {evdev.ABS_X, evdev.ABS_Y},
				evdev.EV_KEY: {evdev.BTN_TOUCH},
			},
			want: input.TypeTouchScreen,
		},
		{
			name: "pressure digitizer without tool buttons",
			caps: map[int][]int{
				evdev.EV_ABS: {evdev.ABS_X, evdev.ABS_Y, evdev.ABS_PRESSURE},
			},
			want: input.TypeDigitizer,
		},
		{
			name: "keyboard",
			caps: map[int][]int{
				evdev.EV_KEY: {evdev.KEY_A, evdev.KEY_Z, evdev.KEY_SPACE, evdev.KEY_ENTER},
			},
			want: input.TypeKeyboard,
		},
		{
			name: "numeric keypad",
			caps: map[int][]int{
				evdev.EV_KEY: {evdev.KEY_KP0, evdev.KEY_KP9, evdev.KEY_KPENTER},
			},
			want: input.TypeKeypad,
		},
		{
			name: "joystick",
			caps: map[int][]int{
				evdev.EV_KEY: {evdev.BTN_JOYSTICK, evdev.BTN_TRIGGER},
				evdev.EV_ABS: {evdev.ABS_RX},
			},
			want: input.TypeJoystick,
		},
		{
			name: "gamepad",
			caps: map[int][]int{
				evdev.EV_KEY: {evdev.BTN_GAMEPAD},
			},
			want: input.TypeGamepad,
		},
		{
			name: "buttonless trackpoint",
			caps: map[int][]int{
				evdev.EV_REL: {evdev.REL_X, evdev.REL_Y},
			},
			want: input.TypePointer,
		},
		{
			name: "power button",
			caps: map[int][]int{
				evdev.EV_KEY: {evdev.KEY_POWER},
			},
			want: input.TypeUnknownHID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, usage := usagePairFor(tt.caps)
			if got := input.TypeFromHIDUsage(page, usage); got != tt.want {
				t.Errorf("classified as %v (page=0x%02X usage=0x%02X), want %v", got, page, usage, tt.want)
			}
		})
	}
}

func TestCleanLinkName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"usb-Logitech_G502-event-mouse", "Logitech_G502"},
		{"usb-Wacom_Co._Ltd._Intuos-event-if01", "Wacom_Co._Ltd._Intuos"},
		{"usb-Keychron_K2-event-kbd", "Keychron_K2"},
		{"plain-name", "plain-name"},
	}
	for _, tt := range tests {
		if got := cleanLinkName(tt.in); got != tt.want {
			t.Errorf("cleanLinkName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Logitech G502 HERO", "logitech-g502-hero"},
		{"  SynPS/2 Synaptics TouchPad", "synps-2-synaptics-touchpad"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
