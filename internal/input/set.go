package input

// Set owns every known device and tracks the active one. A rescan replaces
// the whole registry; controllers of vanished devices are dropped with it,
// and the active resolution becomes stale until the next event re-resolves
// it. The synthetic unassociated-events device is always present.
type Set struct {
	devices  []*Device
	byHandle map[Handle]int
	byID     map[string]int
	active   int
}

func NewSet() *Set {
	s := &Set{}
	s.Rebuild(nil)
	return s
}

// Rebuild replaces the registry contents with devs plus the synthetic
// device. Devices repeating an earlier handle or id are skipped.
func (s *Set) Rebuild(devs []*Device) {
	all := make([]*Device, 0, len(devs)+1)
	byHandle := make(map[Handle]int, len(devs)+1)
	byID := make(map[string]int, len(devs)+1)

	add := func(d *Device) {
		if _, dup := byHandle[d.Info.Handle]; dup {
			return
		}
		if _, dup := byID[d.Info.ID]; dup {
			return
		}
		byHandle[d.Info.Handle] = len(all)
		byID[d.Info.ID] = len(all)
		all = append(all, d)
	}

	for _, d := range devs {
		add(d)
	}
	add(newPseudoDevice())

	s.devices = all
	s.byHandle = byHandle
	s.byID = byID
	s.active = -1
}

// GetAndUpdateActive resolves handle to a device and marks it active. The
// fast path short-circuits while the same handle repeats.
func (s *Set) GetAndUpdateActive(h Handle) (*Device, bool) {
	if s.active >= 0 && s.devices[s.active].Info.Handle == h {
		return s.devices[s.active], true
	}
	i, ok := s.byHandle[h]
	if !ok {
		return nil, false
	}
	s.active = i
	return s.devices[i], true
}

// Active returns the currently active device, if any has been resolved
// since the last rebuild.
func (s *Set) Active() (*Device, bool) {
	if s.active < 0 {
		return nil, false
	}
	return s.devices[s.active], true
}

// Pseudo returns the synthetic unassociated-events device.
func (s *Set) Pseudo() *Device {
	return s.devices[s.byID[PseudoDeviceID]]
}

// ByID looks a device up by its stable id.
func (s *Set) ByID(id string) (*Device, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.devices[i], true
}

// Devices returns all devices in enumeration order, synthetic one last.
func (s *Set) Devices() []*Device {
	return s.devices
}

func (s *Set) Len() int {
	return len(s.devices)
}
