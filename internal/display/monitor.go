// Package display models monitor geometry in the virtual screen space.
package display

import "fmt"

// Monitor represents a physical display as enumerated from the host.
type Monitor struct {
	ID      string
	Name    string
	X       int32 // Position in global coordinate space
	Y       int32
	Width   int32
	Height  int32
	Primary bool
	Scale   float64
}

// Bounds returns the monitor's boundaries
func (m Monitor) Bounds() (x1, y1, x2, y2 int32) {
	return m.X, m.Y, m.X + m.Width, m.Y + m.Height
}

// Contains checks if a point is within this monitor
func (m Monitor) Contains(x, y int32) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// Area returns the monitor's rectangle as a MonitorArea.
func (m Monitor) Area() MonitorArea {
	return MonitorArea{
		LeftTop:     Pos{X: m.X, Y: m.Y},
		RightBottom: Pos{X: m.X + m.Width, Y: m.Y + m.Height},
	}
}

func (m Monitor) String() string {
	return fmt.Sprintf("%s %dx%d@%d,%d scale=%.2f", m.Name, m.Width, m.Height, m.X, m.Y, m.Scale)
}
