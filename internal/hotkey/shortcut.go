// Package hotkey parses shortcut strings and tracks global shortcut
// registrations independent of the host backend.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoModifier = errors.New("shortcut has no modifier")
	ErrNoKey      = errors.New("shortcut has no key")
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModSuper
	ModAlt
	ModShift
)

func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod != 0
}

// Key identifies the non-modifier key of a shortcut. The zero value means
// no key.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyUp
	KeyEscape
	KeyTab
	KeyBackspace
	KeyEnter
	KeySpace
	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyMinus
	KeyPlus
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
)

var keyNames = map[Key]string{
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyUp:        "Up",
	KeyEscape:    "Escape",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyEnter:     "Enter",
	KeySpace:     "Space",
	KeyInsert:    "Insert",
	KeyDelete:    "Delete",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyMinus:     "Minus",
	KeyPlus:      "Plus",
}

var keyByName map[string]Key

func init() {
	for i := 0; i < 10; i++ {
		keyNames[Key0+Key(i)] = string(rune('0' + i))
	}
	for i := 0; i < 26; i++ {
		keyNames[KeyA+Key(i)] = string(rune('A' + i))
	}
	for i := 1; i <= 20; i++ {
		keyNames[KeyF1+Key(i-1)] = fmt.Sprintf("F%d", i)
	}

	keyByName = make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		keyByName[name] = k
	}
}

func (k Key) String() string {
	if s, ok := keyNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Shortcut is a parsed key combination. The zero value is invalid, which
// makes Shortcut usable directly as a map key for dispatch.
type Shortcut struct {
	Mods Modifiers
	Key  Key
}

// Parse reads a combination like "Ctrl+Alt+F9". Token order does not
// matter, but at least one modifier and exactly one key are required.
// Token names are case sensitive.
func Parse(s string) (Shortcut, error) {
	var sc Shortcut
	for _, tok := range strings.Split(s, "+") {
		switch tok {
		case "Ctrl":
			sc.Mods |= ModCtrl
		case "Super":
			sc.Mods |= ModSuper
		case "Alt":
			sc.Mods |= ModAlt
		case "Shift":
			sc.Mods |= ModShift
		default:
			k, ok := keyByName[tok]
			if !ok {
				return Shortcut{}, fmt.Errorf("unrecognized token %q in shortcut %q", tok, s)
			}
			if sc.Key != KeyUnknown {
				return Shortcut{}, fmt.Errorf("more than one key in shortcut %q", s)
			}
			sc.Key = k
		}
	}
	if sc.Mods == 0 {
		return Shortcut{}, fmt.Errorf("shortcut %q: %w", s, ErrNoModifier)
	}
	if sc.Key == KeyUnknown {
		return Shortcut{}, fmt.Errorf("shortcut %q: %w", s, ErrNoKey)
	}
	return sc, nil
}

// String renders the canonical form: modifiers in fixed order, then the key.
func (sc Shortcut) String() string {
	var b strings.Builder
	if sc.Mods.Has(ModCtrl) {
		b.WriteString("Ctrl+")
	}
	if sc.Mods.Has(ModSuper) {
		b.WriteString("Super+")
	}
	if sc.Mods.Has(ModAlt) {
		b.WriteString("Alt+")
	}
	if sc.Mods.Has(ModShift) {
		b.WriteString("Shift+")
	}
	b.WriteString(sc.Key.String())
	return b.String()
}
