package ui

import (
	"strings"
	"testing"

	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/input"
)

func TestDevicesTableListsEveryDevice(t *testing.T) {
	out := DevicesTable([]input.Info{
		{ID: "usb-1/mouse", Type: input.TypeMouse, Name: "USB Mouse", Product: "046d:c077"},
		{ID: "usb-2/pen", Type: input.TypePen, Name: "Drawing Tablet"},
	})
	for _, want := range []string{"usb-1/mouse", "mouse", "USB Mouse", "046d:c077", "usb-2/pen", "pen"} {
		if !strings.Contains(out, want) {
			t.Errorf("table is missing %q:\n%s", want, out)
		}
	}
}

func TestStatusTableShowsKinds(t *testing.T) {
	out := StatusTable([]input.StatusEntry{
		{ID: "a", Status: input.Status{Kind: input.StatusActive, Positioning: input.PositioningRelative}},
		{ID: "b", Status: input.Status{Kind: input.StatusDisconnected}},
	})
	if !strings.Contains(out, "active(relative)") {
		t.Errorf("missing active status:\n%s", out)
	}
	if !strings.Contains(out, "disconnected") {
		t.Errorf("missing disconnected status:\n%s", out)
	}
}

func TestMonitorsTable(t *testing.T) {
	out := MonitorsTable([]display.Monitor{
		{Name: "DP-1", Width: 2560, Height: 1440, X: 0, Y: 0, Scale: 1.25, Primary: true},
	})
	for _, want := range []string{"DP-1", "2560x1440", "0,0", "1.25"} {
		if !strings.Contains(out, want) {
			t.Errorf("table is missing %q:\n%s", want, out)
		}
	}
}
