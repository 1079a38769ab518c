package host

import (
	"fmt"
	"sync"

	"github.com/ThomasT75/uinput"

	"github.com/bnema/mousemux/internal/display"
)

// warpPad is a virtual absolute-pointer device used to place the cursor at
// an exact screen position. Relative uinput mice can only nudge; a touchpad
// with absolute axes spanning the whole layout jumps in one event.
type warpPad struct {
	mu     sync.Mutex
	pad    uinput.TouchPad
	bounds display.MonitorArea
}

func newWarpPad(monitors []display.Monitor) (*warpPad, error) {
	bounds, ok := unionBounds(monitors)
	if !ok {
		return nil, fmt.Errorf("no monitors to span")
	}
	pad, err := uinput.CreateTouchPad("/dev/uinput", []byte("mousemux warp pointer"),
		bounds.LeftTop.X, bounds.RightBottom.X,
		bounds.LeftTop.Y, bounds.RightBottom.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual pointer: %w", err)
	}
	return &warpPad{pad: pad, bounds: bounds}, nil
}

func (w *warpPad) moveTo(p display.Pos) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p = w.bounds.CapturePos(p)
	if err := w.pad.MoveTo(p.X, p.Y); err != nil {
		return fmt.Errorf("failed to move virtual pointer: %w", err)
	}
	return nil
}

// retarget rebuilds the device when the layout changes, since the absolute
// axis ranges are fixed at creation time.
func (w *warpPad) retarget(monitors []display.Monitor) error {
	bounds, ok := unionBounds(monitors)
	if !ok {
		return fmt.Errorf("no monitors to span")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if bounds == w.bounds {
		return nil
	}
	pad, err := uinput.CreateTouchPad("/dev/uinput", []byte("mousemux warp pointer"),
		bounds.LeftTop.X, bounds.RightBottom.X,
		bounds.LeftTop.Y, bounds.RightBottom.Y)
	if err != nil {
		return fmt.Errorf("failed to recreate virtual pointer: %w", err)
	}
	_ = w.pad.Close()
	w.pad = pad
	w.bounds = bounds
	return nil
}

func (w *warpPad) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pad != nil {
		_ = w.pad.Close()
		w.pad = nil
	}
}

// unionBounds returns the smallest rectangle covering every monitor.
func unionBounds(monitors []display.Monitor) (display.MonitorArea, bool) {
	if len(monitors) == 0 {
		return display.MonitorArea{}, false
	}
	b := monitors[0].Area()
	for _, m := range monitors[1:] {
		a := m.Area()
		if a.LeftTop.X < b.LeftTop.X {
			b.LeftTop.X = a.LeftTop.X
		}
		if a.LeftTop.Y < b.LeftTop.Y {
			b.LeftTop.Y = a.LeftTop.Y
		}
		if a.RightBottom.X > b.RightBottom.X {
			b.RightBottom.X = a.RightBottom.X
		}
		if a.RightBottom.Y > b.RightBottom.Y {
			b.RightBottom.Y = a.RightBottom.Y
		}
	}
	return b, true
}
