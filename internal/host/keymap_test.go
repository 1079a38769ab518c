package host

import (
	"testing"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/mousemux/internal/hotkey"
)

func TestKeymapInverseIsConsistent(t *testing.T) {
	if len(keyByCode) != len(evdevKey) {
		t.Fatalf("inverse map has %d entries, forward map %d", len(keyByCode), len(evdevKey))
	}
	for k, code := range evdevKey {
		got, ok := keyByCode[code]
		if !ok {
			t.Errorf("code %d has no inverse entry", code)
			continue
		}
		if got != k {
			t.Errorf("code %d maps back to %v, want %v", code, got, k)
		}
	}
}

func TestKeymapPlusSharesEqualCode(t *testing.T) {
	if evdevKey[hotkey.KeyPlus] != evdev.KEY_EQUAL {
		t.Errorf("Plus maps to code %d, want KEY_EQUAL", evdevKey[hotkey.KeyPlus])
	}
}

func TestComboTrackerDetectsShortcut(t *testing.T) {
	var tr comboTracker

	if _, ok := tr.handleKey(evdev.KEY_LEFTCTRL, 1); ok {
		t.Error("modifier press alone should not fire")
	}
	sc, ok := tr.handleKey(evdev.KEY_A, 1)
	if !ok {
		t.Fatal("Ctrl+A press did not fire")
	}
	want := hotkey.Shortcut{Mods: hotkey.ModCtrl, Key: hotkey.KeyA}
	if sc != want {
		t.Errorf("got %v, want %v", sc, want)
	}
}

func TestComboTrackerIgnoresAutorepeat(t *testing.T) {
	var tr comboTracker
	tr.handleKey(evdev.KEY_LEFTMETA, 1)
	if _, ok := tr.handleKey(evdev.KEY_J, 2); ok {
		t.Error("autorepeat fired a shortcut")
	}
	if _, ok := tr.handleKey(evdev.KEY_J, 1); !ok {
		t.Error("real press after autorepeat did not fire")
	}
}

func TestComboTrackerRequiresModifier(t *testing.T) {
	var tr comboTracker
	if _, ok := tr.handleKey(evdev.KEY_A, 1); ok {
		t.Error("bare key fired a shortcut")
	}
}

func TestComboTrackerTracksRelease(t *testing.T) {
	var tr comboTracker
	tr.handleKey(evdev.KEY_LEFTCTRL, 1)
	tr.handleKey(evdev.KEY_LEFTCTRL, 0)
	if _, ok := tr.handleKey(evdev.KEY_A, 1); ok {
		t.Error("shortcut fired after modifier release")
	}
}

func TestComboTrackerCombinesModifiers(t *testing.T) {
	var tr comboTracker
	tr.handleKey(evdev.KEY_LEFTCTRL, 1)
	tr.handleKey(evdev.KEY_RIGHTSHIFT, 1)
	sc, ok := tr.handleKey(evdev.KEY_F5, 1)
	if !ok {
		t.Fatal("Ctrl+Shift+F5 did not fire")
	}
	want := hotkey.Shortcut{Mods: hotkey.ModCtrl | hotkey.ModShift, Key: hotkey.KeyF5}
	if sc != want {
		t.Errorf("got %v, want %v", sc, want)
	}
}

func TestComboTrackerIgnoresUnmappedKeys(t *testing.T) {
	var tr comboTracker
	tr.handleKey(evdev.KEY_LEFTCTRL, 1)
	if _, ok := tr.handleKey(evdev.KEY_VOLUMEUP, 1); ok {
		t.Error("unmapped key fired a shortcut")
	}
}
