package host

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/hotkey"
	"github.com/bnema/mousemux/internal/input"
)

func TestSimPushRawStampsClock(t *testing.T) {
	s := NewSim()
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	s.Advance(150)
	s.PushRaw(input.Handle(3), display.Pos{X: 10, Y: 20}, false)

	ev := <-s.Events()
	raw, ok := ev.(RawInput)
	if !ok {
		t.Fatalf("got %T, want RawInput", ev)
	}
	if raw.Tick != 150 {
		t.Errorf("tick %d, want 150", raw.Tick)
	}
	if raw.Device != 3 || raw.Pos != (display.Pos{X: 10, Y: 20}) {
		t.Errorf("unexpected report %+v", raw)
	}
}

func TestSimShortcutConflict(t *testing.T) {
	s := NewSim()
	combo := hotkey.Shortcut{Mods: hotkey.ModCtrl | hotkey.ModAlt, Key: hotkey.KeyL}

	if err := s.RegisterShortcut(1000, combo); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterShortcut(1001, combo); !errors.Is(err, hotkey.ErrConflict) {
		t.Errorf("want conflict error, got %v", err)
	}
	if err := s.RegisterShortcut(1000, combo); err != nil {
		t.Errorf("re-registering own combination failed: %v", err)
	}
}

func TestSimRebindReplacesShortcut(t *testing.T) {
	s := NewSim()
	first := hotkey.Shortcut{Mods: hotkey.ModCtrl, Key: hotkey.KeyJ}
	second := hotkey.Shortcut{Mods: hotkey.ModSuper, Key: hotkey.KeyJ}

	if err := s.RegisterShortcut(1001, first); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterShortcut(1001, second); err != nil {
		t.Fatal(err)
	}
	if s.PressHotkey(first) {
		t.Error("stale combination still armed")
	}
	if !s.PressHotkey(second) {
		t.Error("new combination not armed")
	}
	if sc, ok := s.ArmedShortcut(1001); !ok || sc != second {
		t.Errorf("armed shortcut %v, want %v", sc, second)
	}
}

func TestSimPressRequiresArming(t *testing.T) {
	s := NewSim()
	if s.PressHotkey(hotkey.Shortcut{Mods: hotkey.ModCtrl, Key: hotkey.KeyK}) {
		t.Error("unarmed combination emitted an event")
	}
}

func TestSimRecordsWarps(t *testing.T) {
	s := NewSim()
	_ = s.SetCursorPos(display.Pos{X: 1, Y: 2})
	_ = s.SetCursorPos(display.Pos{X: 3, Y: 4})

	warps := s.Warps()
	if len(warps) != 2 {
		t.Fatalf("recorded %d warps, want 2", len(warps))
	}
	if last, ok := s.LastWarp(); !ok || last != (display.Pos{X: 3, Y: 4}) {
		t.Errorf("last warp %v", last)
	}
	if p, _ := s.CursorPos(); p != (display.Pos{X: 3, Y: 4}) {
		t.Errorf("cursor did not follow warp: %v", p)
	}
}

func TestSimFailNextRegisterIsOneShot(t *testing.T) {
	s := NewSim()
	combo := hotkey.Shortcut{Mods: hotkey.ModCtrl, Key: hotkey.KeyM}

	s.FailNextRegister(context.DeadlineExceeded)
	if err := s.RegisterShortcut(7, combo); err == nil {
		t.Fatal("injected failure did not surface")
	}
	if err := s.RegisterShortcut(7, combo); err != nil {
		t.Errorf("failure injection leaked into second call: %v", err)
	}
}
