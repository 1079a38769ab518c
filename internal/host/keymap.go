package host

import (
	evdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/mousemux/internal/hotkey"
)

// evdevKey maps shortcut keys to kernel key codes.
var evdevKey = map[hotkey.Key]uint16{
	hotkey.KeyDown:      evdev.KEY_DOWN,
	hotkey.KeyLeft:      evdev.KEY_LEFT,
	hotkey.KeyRight:     evdev.KEY_RIGHT,
	hotkey.KeyUp:        evdev.KEY_UP,
	hotkey.KeyEscape:    evdev.KEY_ESC,
	hotkey.KeyTab:       evdev.KEY_TAB,
	hotkey.KeyBackspace: evdev.KEY_BACKSPACE,
	hotkey.KeyEnter:     evdev.KEY_ENTER,
	hotkey.KeySpace:     evdev.KEY_SPACE,
	hotkey.KeyInsert:    evdev.KEY_INSERT,
	hotkey.KeyDelete:    evdev.KEY_DELETE,
	hotkey.KeyHome:      evdev.KEY_HOME,
	hotkey.KeyEnd:       evdev.KEY_END,
	hotkey.KeyPageUp:    evdev.KEY_PAGEUP,
	hotkey.KeyPageDown:  evdev.KEY_PAGEDOWN,
	hotkey.KeyMinus:     evdev.KEY_MINUS,
	hotkey.KeyPlus:      evdev.KEY_EQUAL,
	hotkey.Key0:         evdev.KEY_0,
	hotkey.Key1:         evdev.KEY_1,
	hotkey.Key2:         evdev.KEY_2,
	hotkey.Key3:         evdev.KEY_3,
	hotkey.Key4:         evdev.KEY_4,
	hotkey.Key5:         evdev.KEY_5,
	hotkey.Key6:         evdev.KEY_6,
	hotkey.Key7:         evdev.KEY_7,
	hotkey.Key8:         evdev.KEY_8,
	hotkey.Key9:         evdev.KEY_9,
	hotkey.KeyA:         evdev.KEY_A,
	hotkey.KeyB:         evdev.KEY_B,
	hotkey.KeyC:         evdev.KEY_C,
	hotkey.KeyD:         evdev.KEY_D,
	hotkey.KeyE:         evdev.KEY_E,
	hotkey.KeyF:         evdev.KEY_F,
	hotkey.KeyG:         evdev.KEY_G,
	hotkey.KeyH:         evdev.KEY_H,
	hotkey.KeyI:         evdev.KEY_I,
	hotkey.KeyJ:         evdev.KEY_J,
	hotkey.KeyK:         evdev.KEY_K,
	hotkey.KeyL:         evdev.KEY_L,
	hotkey.KeyM:         evdev.KEY_M,
	hotkey.KeyN:         evdev.KEY_N,
	hotkey.KeyO:         evdev.KEY_O,
	hotkey.KeyP:         evdev.KEY_P,
	hotkey.KeyQ:         evdev.KEY_Q,
	hotkey.KeyR:         evdev.KEY_R,
	hotkey.KeyS:         evdev.KEY_S,
	hotkey.KeyT:         evdev.KEY_T,
	hotkey.KeyU:         evdev.KEY_U,
	hotkey.KeyV:         evdev.KEY_V,
	hotkey.KeyW:         evdev.KEY_W,
	hotkey.KeyX:         evdev.KEY_X,
	hotkey.KeyY:         evdev.KEY_Y,
	hotkey.KeyZ:         evdev.KEY_Z,
	hotkey.KeyF1:        evdev.KEY_F1,
	hotkey.KeyF2:        evdev.KEY_F2,
	hotkey.KeyF3:        evdev.KEY_F3,
	hotkey.KeyF4:        evdev.KEY_F4,
	hotkey.KeyF5:        evdev.KEY_F5,
	hotkey.KeyF6:        evdev.KEY_F6,
	hotkey.KeyF7:        evdev.KEY_F7,
	hotkey.KeyF8:        evdev.KEY_F8,
	hotkey.KeyF9:        evdev.KEY_F9,
	hotkey.KeyF10:       evdev.KEY_F10,
	hotkey.KeyF11:       evdev.KEY_F11,
	hotkey.KeyF12:       evdev.KEY_F12,
	hotkey.KeyF13:       evdev.KEY_F13,
	hotkey.KeyF14:       evdev.KEY_F14,
	hotkey.KeyF15:       evdev.KEY_F15,
	hotkey.KeyF16:       evdev.KEY_F16,
	hotkey.KeyF17:       evdev.KEY_F17,
	hotkey.KeyF18:       evdev.KEY_F18,
	hotkey.KeyF19:       evdev.KEY_F19,
	hotkey.KeyF20:       evdev.KEY_F20,
}

var keyByCode map[uint16]hotkey.Key

func init() {
	keyByCode = make(map[uint16]hotkey.Key, len(evdevKey))
	for k, code := range evdevKey {
		keyByCode[code] = k
	}
}

func modifierFor(code uint16) (hotkey.Modifiers, bool) {
	switch code {
	case evdev.KEY_LEFTCTRL, evdev.KEY_RIGHTCTRL:
		return hotkey.ModCtrl, true
	case evdev.KEY_LEFTMETA, evdev.KEY_RIGHTMETA:
		return hotkey.ModSuper, true
	case evdev.KEY_LEFTALT, evdev.KEY_RIGHTALT:
		return hotkey.ModAlt, true
	case evdev.KEY_LEFTSHIFT, evdev.KEY_RIGHTSHIFT:
		return hotkey.ModShift, true
	}
	return 0, false
}

// comboTracker folds a keyboard event stream into shortcut hits. Key
// values follow the kernel convention: 0 release, 1 press, 2 autorepeat.
type comboTracker struct {
	mods hotkey.Modifiers
}

func (t *comboTracker) handleKey(code uint16, value int32) (hotkey.Shortcut, bool) {
	if m, ok := modifierFor(code); ok {
		switch value {
		case 0:
			t.mods &^= m
		case 1:
			t.mods |= m
		}
		return hotkey.Shortcut{}, false
	}
	if value != 1 {
		return hotkey.Shortcut{}, false
	}
	k, ok := keyByCode[code]
	if !ok || t.mods == 0 {
		return hotkey.Shortcut{}, false
	}
	return hotkey.Shortcut{Mods: t.mods, Key: k}, true
}
