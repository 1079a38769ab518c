package display

import "fmt"

// Pos is a point in virtual-screen coordinates.
type Pos struct {
	X int32
	Y int32
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// clampInset keeps clamped positions one pixel clear of the right/bottom
// edges, which the host may attribute to an adjacent monitor.
const clampInset = 1

// MonitorArea is the rectangle a monitor occupies. LeftTop is inclusive;
// RightBottom is the exclusive host bound, so containment is generous on
// shared edges while clamping stays strictly inside.
type MonitorArea struct {
	LeftTop     Pos
	RightBottom Pos
}

// Contains reports whether p lies within the area, edges included.
func (a MonitorArea) Contains(p Pos) bool {
	return a.LeftTop.X <= p.X && p.X <= a.RightBottom.X &&
		a.LeftTop.Y <= p.Y && p.Y <= a.RightBottom.Y
}

// CapturePos clamps p into the area, keeping one pixel clear of the
// right/bottom edges. Returns p unchanged when already inside.
func (a MonitorArea) CapturePos(p Pos) Pos {
	x, y := p.X, p.Y
	if x < a.LeftTop.X {
		x = a.LeftTop.X
	} else if x > a.RightBottom.X-clampInset {
		x = a.RightBottom.X - clampInset
	}
	if y < a.LeftTop.Y {
		y = a.LeftTop.Y
	} else if y > a.RightBottom.Y-clampInset {
		y = a.RightBottom.Y - clampInset
	}
	return Pos{X: x, Y: y}
}

// Center returns the integer midpoint, the landing spot for monitor jumps.
func (a MonitorArea) Center() Pos {
	return Pos{
		X: (a.LeftTop.X + a.RightBottom.X) / 2,
		Y: (a.LeftTop.Y + a.RightBottom.Y) / 2,
	}
}

func (a MonitorArea) valid() bool {
	return a.LeftTop.X < a.RightBottom.X && a.LeftTop.Y < a.RightBottom.Y
}

func (a MonitorArea) String() string {
	return fmt.Sprintf("%v-%v", a.LeftTop, a.RightBottom)
}

// AreaList is an ordered monitor topology snapshot. Order follows host
// enumeration order and defines the "next monitor" cycle. A list is built
// once per rescan and never mutated.
type AreaList struct {
	areas []MonitorArea
}

// NewAreaList builds a list from areas, dropping degenerate rectangles.
func NewAreaList(areas []MonitorArea) AreaList {
	kept := make([]MonitorArea, 0, len(areas))
	for _, a := range areas {
		if a.valid() {
			kept = append(kept, a)
		}
	}
	return AreaList{areas: kept}
}

// AreasOf builds an AreaList from enumerated monitors.
func AreasOf(monitors []Monitor) AreaList {
	areas := make([]MonitorArea, 0, len(monitors))
	for _, m := range monitors {
		areas = append(areas, m.Area())
	}
	return NewAreaList(areas)
}

// Len returns the number of areas.
func (l AreaList) Len() int {
	return len(l.areas)
}

// Locate returns the first area containing p in list order. A miss means the
// topology snapshot is stale, not an error.
func (l AreaList) Locate(p Pos) (MonitorArea, bool) {
	for _, a := range l.areas {
		if a.Contains(p) {
			return a, true
		}
	}
	return MonitorArea{}, false
}

// LocateID returns the index of the first area containing p.
func (l AreaList) LocateID(p Pos) (int, bool) {
	for i, a := range l.areas {
		if a.Contains(p) {
			return i, true
		}
	}
	return 0, false
}

// NextID advances id circularly. The modulo runs against the current length,
// so an id issued before a rescan still lands on some valid area.
func (l AreaList) NextID(id int) int {
	return (id + 1) % len(l.areas)
}

// Area returns the area at id modulo the current length. Panics on an empty
// list.
func (l AreaList) Area(id int) MonitorArea {
	return l.areas[id%len(l.areas)]
}
